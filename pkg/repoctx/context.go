package repoctx

// UnknownHostname is used when the hostname cannot be determined.
const UnknownHostname = "unknown"

// Remote is a named git remote.
type Remote struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	// PushURL is empty when the remote has no separate push URL.
	PushURL string `json:"pushUrl,omitempty"`
}

// URLs returns the remote's fetch and push URLs, skipping empty ones.
func (r Remote) URLs() []string {
	if r.PushURL == "" {
		return []string{r.URL}
	}

	return []string{r.URL, r.PushURL}
}

// Context is a snapshot of the signals used for profile detection.
// It must not be modified after it is built.
type Context struct {
	WorkingDir string `json:"workingDir"`
	// RepoRoot is empty when WorkingDir is not inside a repository.
	RepoRoot     string   `json:"repoRoot,omitempty"`
	CurrentEmail string   `json:"currentEmail,omitempty"`
	CurrentName  string   `json:"currentName,omitempty"`
	Hostname     string   `json:"hostname"`
	Remotes      []Remote `json:"remotes,omitempty"`
	// ParentDirs holds WorkingDir and its ancestors, nearest first, stopping
	// before the home directory or the filesystem root.
	ParentDirs []string `json:"parentDirs,omitempty"`
	// HomeDir is used to expand "~" in configured paths.
	HomeDir string `json:"homeDir,omitempty"`
}

// InRepo reports whether the context was built inside a repository.
func (c *Context) InRepo() bool {
	return c.RepoRoot != ""
}

// RemoteURLs returns the fetch and push URLs of all remotes.
func (c *Context) RemoteURLs() []string {
	urls := []string{}
	for _, r := range c.Remotes {
		urls = append(urls, r.URLs()...)
	}

	return urls
}

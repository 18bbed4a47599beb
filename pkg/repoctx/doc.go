// Package repoctx builds an immutable snapshot of the environment a command
// runs in: the working directory, the enclosing repository and its remotes,
// the configured git identity, the hostname, and the directories between the
// working directory and the user's home.
//
// Missing signals are represented by empty values. Only failures to resolve
// the working directory or to inspect the filesystem are returned as errors.
package repoctx

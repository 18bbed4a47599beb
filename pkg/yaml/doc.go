// Package yaml wraps [github.com/goccy/go-yaml] with the options used for
// configuration files, errors that point at the offending YAML source, and a
// JSON schema validator that reports YAML paths.
package yaml

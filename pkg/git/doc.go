// Package git reads git configuration by running the git command line.
package git

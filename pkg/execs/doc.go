// Package execs runs external commands, as defined by configuration.
//
// It is used by the git collaborator to query git configuration, and records
// each invocation as an OpenTelemetry span.
package execs

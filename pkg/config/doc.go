// Package config provides the gitprof configuration file.
//
// A single YAML document of kind Configuration holds the profiles, the auto
// detector settings, and the fuzzy matcher settings. Documents are validated
// against an embedded JSON schema before decoding, then checked for the
// constraints the schema cannot express (unique profile names, compilable
// expressions, known algorithm names).
package config

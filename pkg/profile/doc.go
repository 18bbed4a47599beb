// Package profile defines git identity profiles.
//
// A profile bundles the identity used for commits (email, user name), the
// signing material that goes with it (1Password vault, SSH key title), and the
// contextual hints used to pick it automatically: repository URL patterns,
// directory patterns, includeIf directories, host patterns, and an optional
// CEL expression.
//
// Profiles are read-only inputs to the resolution engine. They are owned by a
// [Store], which returns a stable snapshot for every call.
package profile

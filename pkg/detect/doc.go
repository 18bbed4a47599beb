// Package detect selects the profile that best fits a repository context.
//
// A [Detector] builds a [repoctx.Context] for a path, runs every enabled
// [rule.Rule] against every profile from a [profile.Store], and combines the
// non-abstaining rule scores into a confidence using the rules' priority
// weights. Profiles below [Config.MinConfidence] are dropped.
//
// Results may be cached per path, and a [Watcher] re-runs detection when the
// repository's git configuration or the profile configuration changes.
package detect

// Package match ranks profiles against a free-text query.
//
// Three string similarity algorithms are provided: [Levenshtein],
// [Substring], and [Fuzzy]. All of them compare case-insensitively, operate on
// Unicode code points, and return a score in [0, 1].
//
// A [Matcher] combines one primary algorithm and an ordered list of fallbacks
// across the enabled profile fields, producing a weighted score per profile.
package match

// Package rule scores profiles against a repository context.
//
// Each [Rule] inspects one kind of signal (remote URLs, directories,
// hostname, git identity, or a profile's CEL "when" expression) and either
// returns a confidence in [0, 1] or abstains. Abstaining means the rule has
// no opinion, which is different from a score of zero: the detector leaves
// abstaining rules out of its weighted average entirely.
package rule

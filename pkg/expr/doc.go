// Package expr provides CEL (Common Expression Language) functionality
// for evaluating profile "when" expressions against a repository context.
//
// It creates CEL environments with custom functions for:
//   - Wildcard matching (glob)
//   - File path operations (pathBase, pathDir, pathExt)
//   - YAML content extraction (yamlPath)
//
// CEL expressions have access to variables:
//   - `dir` (string): The working directory
//   - `repoRoot` (string): The repository root, or "" outside a repository
//   - `remotes` (list<string>): Fetch and push URLs of all remotes
//   - `hostname` (string): The machine's hostname
//   - `email` (string): The configured git user.email
//   - `name` (string): The configured git user.name
//   - `parents` (list<string>): The working directory and its ancestors
package expr

// Package manifest reads and edits TOML-like dependency manifests such as
// pyproject.toml line by line.
//
// The package implements:
//   - Section extraction: the candidate lines of one [table]
//   - Dependency parsing: `name = "1.0"` and `name = { version = "1.0", ... }`
//   - In-place rewriting that keeps every byte outside the version text
//   - A TOML validity guard for the rewritten content
//   - Classification of version changes (major/minor/patch)
//
// Manifests are never round-tripped through a TOML encoder; comments,
// ordering and formatting survive because only version substrings change.
package manifest

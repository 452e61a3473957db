// Package testutil provides fixtures for testing blockreg components.
//
// Key helpers:
//   - CreateFile / CreateDir: real files under a test temp dir
//   - WriteFiles: a map of relative paths to contents on any afero.Fs
//   - DefinitionTree: a temp dir of definition files plus a config pointing at it
//   - Block: a minimal block type that passes validation
//
// All test data should be defined inline, not in external files.
package testutil

// Package blocktype defines the records the block type registry stores:
// block type settings and their deprecation entries, icons, categories,
// styles, variations and collections.
//
// Settings is a typed record with an Extra bag so that filters written by
// third parties can add fields the registry does not know about. Values can
// be read and written by their wire name with Get, Set and Delete, which is
// how the registration pipeline merges deprecation entries and applies
// allowlists without caring which fields are typed.
package blocktype

// Package loader reads block type definitions from disk.
//
// A definition file is JSON (block.json style), YAML, TOML or HCL, chosen by
// extension. A file holds either one definition or a list under "blocks".
// Callable fields (save, edit, and migrate and isEligible on deprecations)
// are handle names and become blocktype.Ref values. An icon given as inline
// <svg> markup is parsed into an element.
//
// HCL files may also declare each definition as a labelled block:
//
//	block "acme/card" {
//	  title = "Card"
//	  save  = "acme.card.save"
//	}
package loader

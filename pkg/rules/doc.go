// Package rules turns declarative filter rules from configuration into
// registration filters.
//
// # Pattern Conventions
//
// A rule's match pattern is a glob on the block name:
//
//   - `core/paragraph` - Exact name
//   - `core/*` - Every block in a namespace
//   - `*/gallery` - A block name in any namespace
//   - `!core/*` - Every block outside a namespace (leading !)
//
// # Configuration
//
//	[[filters]]
//	match = "acme/*"
//	priority = 20
//	category = "widgets"
//	icon = "star-filled"
//	keywords = ["acme"]
//	supports = { html = false }
//
// Category and icon are only set when the rule gives them. Keywords are
// appended. Supports are merged one level deep.
package rules

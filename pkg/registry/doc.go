// Package registry provides the ordered keyed map the block registry keeps its
// state in.
package registry

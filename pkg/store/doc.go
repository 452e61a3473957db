// Package store holds the block registry state and the actions that change it.
//
// State is published as an immutable snapshot. Readers load it without
// locking. Writers go through Dispatch, which applies a batch of actions to a
// copy under a single writer lock and swaps the copy in. Actions are applied
// in submission order and a later upsert of the same key wins.
package store

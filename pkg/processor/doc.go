// Package processor turns a submitted block type definition into the
// definition the registry stores, or rejects it.
//
// Processing runs the registration filters over the definition and over each
// of its deprecations, corrects legacy and unknown categories, validates the
// result and normalizes its icon. A rejection is reported to the diagnostics
// sink and returned as a coded error. Nothing is stored here.
package processor

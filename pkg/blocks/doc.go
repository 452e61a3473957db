// Package blocks is the registration API for block types.
//
// A Registry ties together the filter chains, the processing pipeline and the
// store. Every submitted definition is recorded as given, so that
// ReapplyBlockTypeFilters can run the pipeline again after filters or
// categories registered later have changed what it produces.
package blocks

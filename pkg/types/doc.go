// Package types defines the canonical catalog record, the filter and sort
// state shared by the engine and the CLI, the RecordStore contract every
// backend implements, configuration, and the standard error values.
//
// Backends translate their own field names into Record before anything else
// in the module sees the data; the rest of the code only ever handles the
// canonical shape declared here.
package types

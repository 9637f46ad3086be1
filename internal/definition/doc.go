// Package definition recovers the declared stage graph from a pipeline's raw
// textual definition.
//
// This is deliberately not a parser for the definition format. It scans the
// text line by line for exactly two constructs, stage declarations and their
// dependency lists, and ignores everything else. Anything it cannot make
// sense of degrades to an empty or partial result; the output is advisory
// metadata for visualization, never a source of truth for execution.
package definition

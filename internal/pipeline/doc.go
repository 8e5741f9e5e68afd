// Package pipeline drives a run: for every job it acquires alignments,
// builds features, runs each model in turn, ranks the results and writes
// them. One failing job is logged and skipped; the run goes on.
//
// The crop-length Watermark is the only state shared between jobs and is
// passed in explicitly.
package pipeline

// Package results aggregates batch outcomes and exports them.
//
// Summarize counts successes and failures, Classify maps a confidence value
// onto its display tier, and Export writes the CSV artifact users download.
// Every function here is pure except ExportFile, which writes atomically
// through fileutil.
package results

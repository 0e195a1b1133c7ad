package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"entmatch/internal/fileutil"
	"entmatch/internal/matcher"
)

// DefaultExportFilename is the artifact name used when the user supplies none.
const DefaultExportFilename = "fuzzy_match_results.csv"

// NoMatchText fills the match column when an outcome has no match.
const NoMatchText = "No match"

var exportHeader = []string{"input", "match", "confidence", "error"}

// Export writes outcomes as CSV, one row per outcome in input order.
func Export(w io.Writer, outcomes []matcher.BatchOutcome) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for i, outcome := range outcomes {
		match := outcome.MatchText()
		if match == "" {
			match = NoMatchText
		}
		row := []string{
			outcome.Input,
			match,
			strconv.FormatFloat(outcome.Confidence, 'f', -1, 64),
			outcome.ErrorText(),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write export row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

// ExportFile writes outcomes to path atomically under an exclusive lock.
func ExportFile(path string, outcomes []matcher.BatchOutcome) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return Export(w, outcomes)
	})
}

package results

import "entmatch/internal/matcher"

// Summary counts batch outcomes.
type Summary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// SuccessRate returns the successful share of total, or 0 for an empty batch.
func (s Summary) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.Total)
}

// Summarize counts outcomes. An outcome is successful when it has a match and
// no error; every other outcome is failed.
func Summarize(outcomes []matcher.BatchOutcome) Summary {
	summary := Summary{Total: len(outcomes)}
	for _, outcome := range outcomes {
		if outcome.Succeeded() {
			summary.Successful++
		}
	}
	summary.Failed = summary.Total - summary.Successful
	return summary
}

// Status is the per-row label shown in result tables.
type Status string

const (
	StatusSuccess Status = "Success"
	StatusNoMatch Status = "No Match"
	StatusError   Status = "Error"
)

// StatusOf labels a batch outcome.
func StatusOf(outcome matcher.BatchOutcome) Status {
	switch {
	case outcome.ErrorText() != "":
		return StatusError
	case outcome.MatchText() == "":
		return StatusNoMatch
	default:
		return StatusSuccess
	}
}

package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"entmatch/internal/batch"
	"entmatch/internal/matcher"
	"entmatch/internal/results"
)

const missingScoresNote = "The matcher did not include detailed scores in batch responses"

func formatScore(score float64) string {
	return fmt.Sprintf("%s (%s)", results.FormatConfidence(score), results.QualityOf(score))
}

// renderSingleOutcome formats a single query result as a ranked table.
func renderSingleOutcome(outcome matcher.SingleOutcome, details, colorize bool) string {
	candidates := outcome.Candidates()
	if outcome.TopMatch == nil {
		return fmt.Sprintf("No match found for %q", outcome.Query)
	}

	headers := []string{"#", "Entity", "Confidence", "Tier"}
	aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft}
	if details {
		headers = append(headers, "TF-IDF", "Levenshtein", "Token Set")
		aligns = append(aligns, alignRight, alignRight, alignRight)
	}

	rows := make([][]string, 0, len(candidates))
	for i, candidate := range candidates {
		row := []string{
			strconv.Itoa(i + 1),
			candidate.Entity,
			results.FormatConfidence(candidate.Confidence),
			colorTier(results.Classify(candidate.Confidence), colorize),
		}
		if details {
			row = append(row, scoreColumns(candidate.Scores)...)
		}
		rows = append(rows, row)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Query: %s\n", outcome.Query)
	fmt.Fprintf(&b, "Best match: %s (%s)\n", outcome.TopMatch.Entity, results.FormatConfidence(outcome.TopMatch.Confidence))
	b.WriteString(renderTable(headers, rows, aligns))
	return b.String()
}

func scoreColumns(scores *matcher.ScoreVector) []string {
	if scores == nil {
		return []string{"-", "-", "-"}
	}
	return []string{formatScore(scores.TFIDF), formatScore(scores.Levenshtein), formatScore(scores.TokenSet)}
}

// renderBatchSummary formats the aggregate counts for a report.
func renderBatchSummary(report batch.Report, colorize bool) []string {
	summary := report.Summary
	lines := renderSectionHeader("Batch Summary", colorize)
	lines = append(lines,
		renderStatusLine("File", statusInfo, report.File, colorize),
		renderStatusLine("Total", statusInfo, strconv.Itoa(summary.Total), colorize),
		renderStatusLine("Successful", statusOK, strconv.Itoa(summary.Successful), colorize),
	)
	failedKind := statusOK
	if summary.Failed > 0 {
		failedKind = statusWarn
	}
	lines = append(lines,
		renderStatusLine("Failed", failedKind, strconv.Itoa(summary.Failed), colorize),
		renderStatusLine("Success rate", statusInfo, fmt.Sprintf("%.1f%%", summary.SuccessRate()*100), colorize),
		renderStatusLine("Elapsed", statusInfo, report.Elapsed.Round(time.Millisecond).String(), colorize),
		renderStatusLine("Completed", statusInfo, humanize.Time(report.CompletedAt), colorize),
	)
	return lines
}

// renderBatchTable formats per-name outcomes in submission order.
func renderBatchTable(outcomes []matcher.BatchOutcome, details, colorize bool) string {
	headers := []string{"#", "Input", "Match", "Confidence", "Tier", "Status"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft}
	if details {
		headers = append(headers, "TF-IDF", "Levenshtein", "Token Set")
		aligns = append(aligns, alignRight, alignRight, alignRight)
	}

	missingScores := false
	rows := make([][]string, 0, len(outcomes))
	for i, outcome := range outcomes {
		status := results.StatusOf(outcome)
		match := outcome.MatchText()
		confidence := "-"
		tier := "-"
		if status == results.StatusSuccess {
			confidence = results.FormatConfidence(outcome.Confidence)
			tier = colorTier(results.Classify(outcome.Confidence), colorize)
		}
		if match == "" {
			match = results.NoMatchText
		}
		statusText := string(status)
		if status == results.StatusError {
			statusText = fmt.Sprintf("%s: %s", status, outcome.ErrorText())
		}
		row := []string{strconv.Itoa(i + 1), outcome.Input, match, confidence, tier, statusText}
		if details {
			if outcome.Scores == nil && status == results.StatusSuccess {
				missingScores = true
			}
			row = append(row, scoreColumns(outcome.Scores)...)
		}
		rows = append(rows, row)
	}

	rendered := renderTable(headers, rows, aligns)
	if missingScores {
		rendered += "\n" + missingScoresNote
	}
	return rendered
}

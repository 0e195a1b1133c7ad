package results

import (
	"fmt"
	"math"
)

// Tier is a display band for a confidence value.
type Tier string

const (
	TierHigh    Tier = "High"
	TierMedium  Tier = "Medium"
	TierLow     Tier = "Low"
	TierVeryLow Tier = "Very Low"
)

// Tier boundaries, inclusive at the lower edge.
const (
	HighThreshold   = 0.8
	MediumThreshold = 0.6
	LowThreshold    = 0.4
)

// Classify maps confidence onto a tier. NaN is treated as the lowest tier.
func Classify(confidence float64) Tier {
	switch {
	case confidence >= HighThreshold:
		return TierHigh
	case confidence >= MediumThreshold:
		return TierMedium
	case confidence >= LowThreshold:
		return TierLow
	default:
		return TierVeryLow
	}
}

// Rank orders tiers from lowest (0) to highest (3).
func (t Tier) Rank() int {
	switch t {
	case TierHigh:
		return 3
	case TierMedium:
		return 2
	case TierLow:
		return 1
	default:
		return 0
	}
}

// Color returns the ANSI SGR sequence used when rendering the tier.
func (t Tier) Color() string {
	switch t {
	case TierHigh:
		return "\x1b[32m"
	case TierMedium:
		return "\x1b[33m"
	case TierLow:
		return "\x1b[38;5;208m"
	default:
		return "\x1b[31m"
	}
}

// Quality is the verbal rating shown next to detailed scores.
type Quality string

const (
	QualityExcellent Quality = "Excellent"
	QualityGood      Quality = "Good"
	QualityFair      Quality = "Fair"
	QualityPoor      Quality = "Poor"
)

// QualityOf rates a single similarity signal.
func QualityOf(score float64) Quality {
	switch {
	case score >= 0.9:
		return QualityExcellent
	case score >= 0.7:
		return QualityGood
	case score >= 0.5:
		return QualityFair
	default:
		return QualityPoor
	}
}

// FormatConfidence renders a [0,1] confidence as a percentage with one decimal.
func FormatConfidence(confidence float64) string {
	if math.IsNaN(confidence) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", confidence*100)
}

package contract

// ConfidenceTier is the severity band of a confidence score.
type ConfidenceTier string

const (
	TierSuccess     ConfidenceTier = "success"
	TierWarning     ConfidenceTier = "warning"
	TierDestructive ConfidenceTier = "destructive"
)

const (
	successThreshold = 90
	warningThreshold = 70
)

// TierForScore bands a score, evaluated highest first.
func TierForScore(score float64) ConfidenceTier {
	switch {
	case score >= successThreshold:
		return TierSuccess
	case score >= warningThreshold:
		return TierWarning
	default:
		return TierDestructive
	}
}

// Class returns the text color class for the tier.
func (t ConfidenceTier) Class() string {
	return "text-" + string(t)
}

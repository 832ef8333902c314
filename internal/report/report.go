package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/Alias1177/Lucent/internal/risk"
	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/models"
)

// TimeLayout is used for history timestamps
const TimeLayout = "15:04:05"

// Percent formats a probability as a percentage with one decimal
func Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p*100)
}

// Result renders a successful lookup with its tier
func Result(r *models.PredictionResult) string {
	tier := risk.Classify(r.Probability)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Trial ID: %s\n", r.NCTID))
	sb.WriteString(fmt.Sprintf("Success Probability: %s (±%.1f%% uncertainty)\n", Percent(r.Probability), r.Uncertainty*100))
	if r.SampledProbability != nil {
		sb.WriteString(fmt.Sprintf("Sampled Mean: %s\n", Percent(*r.SampledProbability)))
	}
	sb.WriteString(fmt.Sprintf("Risk Category: %s (%s Confidence)\n", tier.Label, tier.Confidence))
	sb.WriteString(tier.Description)
	return sb.String()
}

// State renders any session state
func State(st session.State) string {
	switch st.Status {
	case session.StatusIdle:
		return "Enter an NCTID (e.g., NCT01721746)"
	case session.StatusLoading:
		return fmt.Sprintf("Analyzing clinical data for %s...", st.NCTID)
	case session.StatusSucceeded:
		return Result(st.Result)
	case session.StatusFailed:
		return "Analysis error: " + st.Message
	}
	return ""
}

// History renders recent lookups, one per line
func History(entries []models.HistoryEntry) string {
	if len(entries) == 0 {
		return "No recent analysis"
	}

	var sb strings.Builder
	sb.WriteString("Recent Analysis\n")
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s  %s  %6s  %s\n", e.Timestamp.Format(TimeLayout), e.NCTID, Percent(e.Probability), risk.Classify(e.Probability).Label))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Tiers renders the boundary table
func Tiers() string {
	var sb strings.Builder
	for i, th := range risk.Thresholds {
		tier, _ := risk.Lookup(th.Tier)
		bound := fmt.Sprintf(">= %s", Percent(th.LowerBound))
		if math.IsInf(th.LowerBound, -1) && i > 0 {
			bound = fmt.Sprintf("< %s", Percent(risk.Thresholds[i-1].LowerBound))
		}
		sb.WriteString(fmt.Sprintf("%-16s %-9s %s\n", tier.Label, bound, tier.Description))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Model renders the model card
func Model(info models.ModelInfo) string {
	return fmt.Sprintf("Model Version: v%s\nAccuracy: %s\nTraining Data: %s\nLast Updated: %s\nAvg Processing Time: ~%ds",
		info.Version, info.Accuracy, info.DatasetSize, info.LastUpdated, info.AvgProcessingTime)
}

package report

import (
	"strings"
	"testing"
	"time"

	"github.com/Alias1177/Lucent/internal/session"
	"github.com/Alias1177/Lucent/models"
	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, "81.0%", Percent(0.81))
	assert.Equal(t, "72.5%", Percent(0.725))
	assert.Equal(t, "0.0%", Percent(0))
}

func TestResult(t *testing.T) {
	sampled := 0.79
	out := Result(&models.PredictionResult{NCTID: "NCT00072579", Probability: 0.81, Uncertainty: 0.05, SampledProbability: &sampled})

	assert.Contains(t, out, "Trial ID: NCT00072579")
	assert.Contains(t, out, "81.0% (±5.0% uncertainty)")
	assert.Contains(t, out, "Sampled Mean: 79.0%")
	assert.Contains(t, out, "Risk Category: High Probability (High Confidence)")
}

func TestState(t *testing.T) {
	tests := []struct {
		name     string
		st       session.State
		contains string
	}{
		{"idle", session.State{}, "Enter an NCTID"},
		{"loading", session.State{Status: session.StatusLoading, NCTID: "NCT1"}, "Analyzing clinical data for NCT1"},
		{"failed", session.State{Status: session.StatusFailed, Message: session.MsgConnectionError}, "Analysis error: connection error"},
		{"succeeded", session.State{Status: session.StatusSucceeded, Result: &models.PredictionResult{NCTID: "NCT1", Probability: 0.1}}, "High Risk"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, State(tt.st), tt.contains)
		})
	}
}

func TestHistory(t *testing.T) {
	assert.Equal(t, "No recent analysis", History(nil))

	out := History([]models.HistoryEntry{
		{NCTID: "NCT2", Probability: 0.5, Timestamp: time.Date(2025, 6, 1, 14, 5, 9, 0, time.UTC)},
		{NCTID: "NCT1", Probability: 0.31, Timestamp: time.Date(2025, 6, 1, 14, 1, 0, 0, time.UTC)},
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "14:05:09")
	assert.Contains(t, lines[1], "NCT2")
	assert.Contains(t, lines[1], "Moderate")
	assert.Contains(t, lines[2], "Below Average")
}

func TestTiers(t *testing.T) {
	lines := strings.Split(Tiers(), "\n")
	assert.Len(t, lines, 5)
	assert.Contains(t, lines[0], ">= 72.5%")
	assert.Contains(t, lines[4], "High Risk")
	assert.Contains(t, lines[3], ">= 30.0%")
	assert.Contains(t, lines[4], "< 30.0%")
	assert.NotContains(t, Tiers(), "Inf")
}

func TestModel(t *testing.T) {
	out := Model(models.DefaultModelInfo)
	assert.Contains(t, out, "v0.2.0")
	assert.Contains(t, out, "17K+ trials")
}

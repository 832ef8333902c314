package models

import (
	"encoding/json"
	"time"
)

// PredictionResult is the outcome of one successful lookup
type PredictionResult struct {
	NCTID       string  `json:"nctid"`
	Probability float64 `json:"probability"`
	Uncertainty float64 `json:"uncertainty"`
	// SampledProbability is the Monte-Carlo mean reported next to the
	// deterministic estimate. Display only, never used for tiering.
	SampledProbability *float64 `json:"sampled_probability,omitempty"`
}

// HistoryEntry is a snapshot kept in the recent lookups ledger
type HistoryEntry struct {
	NCTID       string    `json:"nctid"`
	Probability float64   `json:"probability"`
	Timestamp   time.Time `json:"timestamp"`
}

// PredictResponse represents the payload of GET /predict/{nctid}
type PredictResponse struct {
	NCTID         string          `json:"nctid"`
	Deterministic *float64        `json:"deterministic"`
	Probability   *float64        `json:"probability,omitempty"`
	Uncertainty   *float64        `json:"uncertainty"`
	Error         json.RawMessage `json:"error,omitempty"`
}

// HasError reports whether the payload carries a truthy error field.
// null, false, "" and 0 are treated as absent. Objects and arrays,
// even empty ones, count as an error.
func (r *PredictResponse) HasError() bool {
	if len(r.Error) == 0 {
		return false
	}

	var v interface{}
	if err := json.Unmarshal(r.Error, &v); err != nil {
		return true
	}

	switch e := v.(type) {
	case nil:
		return false
	case bool:
		return e
	case string:
		return e != ""
	case float64:
		return e != 0
	case []interface{}:
		return true
	case map[string]interface{}:
		return true
	}
	return true
}

// ErrorText returns the remote error value as plain text
func (r *PredictResponse) ErrorText() string {
	var s string
	if err := json.Unmarshal(r.Error, &s); err == nil {
		return s
	}
	return string(r.Error)
}

// Lookup outcomes stored in the journal
const (
	OutcomeSucceeded = "SUCCEEDED"
	OutcomeFailed    = "FAILED"
)

// LookupRecord is one resolved submission written to the journal
type LookupRecord struct {
	ID          string
	NCTID       string
	Outcome     string
	Probability float64
	Uncertainty float64
	Message     string
	CreatedAt   time.Time
}

// ModelInfo describes the remote model for about screens
type ModelInfo struct {
	Version           string `json:"model_version"`
	LastUpdated       string `json:"last_updated"`
	DatasetSize       string `json:"dataset_size"`
	Accuracy          string `json:"accuracy"`
	AvgProcessingTime int    `json:"avg_processing_time_sec"`
}

// DefaultModelInfo is the model card of the deployed predictor
var DefaultModelInfo = ModelInfo{
	Version:           "0.2.0",
	LastUpdated:       "June 2025",
	DatasetSize:       "17K+ trials",
	Accuracy:          "70%",
	AvgProcessingTime: 10,
}

package risk

import "math"

// TierID identifies a risk tier. Tiers are ordered from the most to the
// least favourable outcome.
type TierID int

const (
	HighProbability TierID = iota
	ModerateHigh
	Moderate
	BelowAverage
	HighRisk
)

// Style carries display-only colour hints for a tier
type Style struct {
	Color      string `json:"color"`
	Background string `json:"background"`
	Border     string `json:"border"`
	Indicator  string `json:"indicator"`
}

// Tier is a risk bucket with its display metadata
type Tier struct {
	ID          TierID `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Confidence  string `json:"confidence"`
	Style       Style  `json:"style"`
}

// Threshold pairs an inclusive lower bound with the tier it opens
type Threshold struct {
	LowerBound float64
	Tier       TierID
}

// Thresholds is the canonical boundary table, evaluated top-down.
// The last bound is -Inf so every input lands in exactly one tier.
var Thresholds = []Threshold{
	{LowerBound: 0.725, Tier: HighProbability},
	{LowerBound: 0.60, Tier: ModerateHigh},
	{LowerBound: 0.45, Tier: Moderate},
	{LowerBound: 0.30, Tier: BelowAverage},
	{LowerBound: math.Inf(-1), Tier: HighRisk},
}

var tiers = map[TierID]Tier{
	HighProbability: {
		ID:          HighProbability,
		Label:       "High Probability",
		Description: "Strong likelihood of trial success based on historical data patterns",
		Confidence:  "High",
		Style:       Style{Color: "emerald-700", Background: "emerald-50", Border: "emerald-200", Indicator: "emerald-500"},
	},
	ModerateHigh: {
		ID:          ModerateHigh,
		Label:       "Moderate-High",
		Description: "Above-average success probability with favorable risk profile",
		Confidence:  "Moderate-High",
		Style:       Style{Color: "green-700", Background: "green-50", Border: "green-200", Indicator: "green-500"},
	},
	Moderate: {
		ID:          Moderate,
		Label:       "Moderate",
		Description: "Balanced risk-reward profile requiring careful evaluation",
		Confidence:  "Moderate",
		Style:       Style{Color: "yellow-700", Background: "yellow-50", Border: "yellow-200", Indicator: "yellow-500"},
	},
	BelowAverage: {
		ID:          BelowAverage,
		Label:       "Below Average",
		Description: "Elevated risk factors identified - enhanced due diligence recommended",
		Confidence:  "Low-Moderate",
		Style:       Style{Color: "orange-700", Background: "orange-50", Border: "orange-200", Indicator: "orange-500"},
	},
	HighRisk: {
		ID:          HighRisk,
		Label:       "High Risk",
		Description: "Significant risk factors present - comprehensive risk assessment advised",
		Confidence:  "Low",
		Style:       Style{Color: "red-700", Background: "red-50", Border: "red-200", Indicator: "red-500"},
	},
}

// Classify maps a success probability to its risk tier.
//
// Values outside [0,1] are not clamped; they follow the same table, so
// anything above 1 is HighProbability and anything negative (or NaN) is
// HighRisk. Uncertainty plays no part in the decision.
func Classify(probability float64) Tier {
	for _, th := range Thresholds {
		if probability >= th.LowerBound {
			return tiers[th.Tier]
		}
	}
	return tiers[HighRisk]
}

// Tiers returns all tiers from the most to the least favourable
func Tiers() []Tier {
	out := make([]Tier, 0, len(Thresholds))
	for _, th := range Thresholds {
		out = append(out, tiers[th.Tier])
	}
	return out
}

// Lookup returns the tier with the given id
func Lookup(id TierID) (Tier, bool) {
	t, ok := tiers[id]
	return t, ok
}

// String returns the tier label
func (id TierID) String() string {
	if t, ok := tiers[id]; ok {
		return t.Label
	}
	return "Unknown"
}

package trajectory

import (
	"strings"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// ComparisonStatus is the backend's verdict for one compared metric.
// Only poor is rendered as a problem; fair and good read as on track.
type ComparisonStatus string

const (
	StatusPoor ComparisonStatus = "poor"
	StatusFair ComparisonStatus = "fair"
	StatusGood ComparisonStatus = "good"
)

// IsValid reports whether s is a status the backend emits.
func (s ComparisonStatus) IsValid() bool {
	return s == StatusPoor || s == StatusFair || s == StatusGood
}

// MetricComparison compares the student's value with the benchmark.
type MetricComparison struct {
	Student float64
	Optimal float64
	Status  ComparisonStatus
}

// Comparison holds the three tracked metric comparisons.
type Comparison struct {
	ScreenTime MetricComparison
	FocusScore MetricComparison
	Sleep      MetricComparison

	// Empty is set when the backend had no behavioral data to compare;
	// the metric fields are then zero.
	Empty bool
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64
	Max float64
}

// Correlations are the backend's correlation coefficients.
type Correlations struct {
	ScreenTimeVsGPA        float64
	FocusScoreVsTrajectory float64
	SleepVsAcademic        float64
	SampleSize             int

	OptimalScreenTime Range
	OptimalFocusScore Range
	OptimalSleep      Range

	// Interpretation maps a correlation name to its free-text reading.
	Interpretation map[string]string
}

// AlumniComparison is the standalone comparison against successful alumni.
type AlumniComparison struct {
	StudentID     int64
	Comparison    Comparison
	OverallStatus ComparisonStatus
	Message       string
}

// AtRiskFlag is one risk pattern detected by the backend.
type AtRiskFlag struct {
	Flag        string
	Severity    string
	Description string
	MetricValue *float64
	Threshold   *float64
}

// Insights is the behavioral insights payload.
type Insights struct {
	Correlations    Correlations
	AtRiskFlags     []AtRiskFlag
	Comparison      Comparison
	Recommendations []string
}

// TopRecommendations is how many recommendations the dashboard lists.
const TopRecommendations = 3

// RecommendationView is one recommendation with its estimated impact.
type RecommendationView struct {
	Text   string      `json:"text"`
	Impact string      `json:"impact"`
	Tone   shared.Tone `json:"tone"`
}

// RankRecommendations returns the first TopRecommendations entries. Text
// mentioning "urgent" or "reduce screen" is High Impact; anything else is
// Medium Impact.
func RankRecommendations(recs []string) []RecommendationView {
	n := min(len(recs), TopRecommendations)
	views := make([]RecommendationView, 0, n)
	for _, text := range recs[:n] {
		lower := strings.ToLower(text)
		v := RecommendationView{Text: text, Impact: "Medium Impact", Tone: shared.ToneWarning}
		if strings.Contains(lower, "urgent") || strings.Contains(lower, "reduce screen") {
			v.Impact, v.Tone = "High Impact", shared.ToneDanger
		}
		views = append(views, v)
	}
	return views
}

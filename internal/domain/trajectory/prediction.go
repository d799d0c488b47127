// Package trajectory contains the already-computed career trajectory
// prediction and behavioral insights returned by the backend. Nothing in
// this package scores or correlates; it only carries the results.
package trajectory

// Trend is the direction of the trajectory score over time.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// IsValid reports whether t is one of the known trends.
func (t Trend) IsValid() bool {
	return t == TrendImproving || t == TrendDeclining || t == TrendStable
}

// Components holds the three per-component values of a prediction.
type Components struct {
	Academic   float64
	Behavioral float64
	Skills     float64
}

// Sum returns Academic + Behavioral + Skills.
func (c Components) Sum() float64 {
	return c.Academic + c.Behavioral + c.Skills
}

// SimilarAlumnus is one alumni match, most similar first.
type SimilarAlumnus struct {
	AlumniID        int64
	SimilarityScore float64 // [0,1]
	CompanyTier     string
	OutcomeScore    float64
}

// Prediction is the trajectory prediction for the current student.
type Prediction struct {
	TrajectoryScore  float64    // [0,100]
	ComponentScores  Components // each [0,100]
	ComponentWeights Components // sums to 1.0
	Confidence       float64    // [0,1]
	MarginOfError    float64
	Trend            Trend
	Velocity         float64
	PredictedTier    string
	Interpretation   string
	SimilarAlumni    []SimilarAlumnus
}

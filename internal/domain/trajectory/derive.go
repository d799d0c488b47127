package trajectory

import (
	"fmt"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
)

// Fixed presentation thresholds. Not configurable by the backend.
const (
	GoodScoreThreshold      = 70.0
	HighConfidenceThreshold = 0.7

	AcademicStrongThreshold = 70.0
	BehavioralGoodThreshold = 60.0
	SkillsGoodThreshold     = 60.0

	// TopAlumni is how many similar alumni the dashboard lists.
	TopAlumni = 3

	// DefaultPredictedTier is shown when the backend sends no tier.
	DefaultPredictedTier = "Tier 2"
)

// ComponentView is one labelled component score.
type ComponentView struct {
	Name          string      `json:"name"`
	Score         int         `json:"score"`
	WeightPercent int         `json:"weight_percent"`
	Label         string      `json:"label"`
	Tone          shared.Tone `json:"tone"`
}

// AlumnusView is one similar alumni match ready for display.
type AlumnusView struct {
	AlumniID     int64  `json:"alumni_id"`
	Name         string `json:"name"`
	MatchPercent int    `json:"match_percent"`
	CompanyTier  string `json:"company_tier"`
	OutcomeScore int    `json:"outcome_score"`
}

// View is the display-ready derivation of a Prediction.
type View struct {
	Score      int         `json:"score"`
	ScoreLabel string      `json:"score_label"`
	ScoreTone  shared.Tone `json:"score_tone"`

	ConfidencePercent int    `json:"confidence_percent"`
	ConfidenceLow     int    `json:"confidence_low"`
	ConfidenceHigh    int    `json:"confidence_high"`
	ConfidenceLabel   string `json:"confidence_label"`

	Trend         Trend  `json:"trend"`
	VelocityText  string `json:"velocity_text"`
	PredictedTier string `json:"predicted_tier"`

	Interpretation string `json:"interpretation"`

	Components []ComponentView `json:"components"`

	// AlumniTotal counts every match; Alumni holds at most TopAlumni.
	AlumniTotal int           `json:"alumni_total"`
	Alumni      []AlumnusView `json:"alumni"`
}

// Derive computes the display view of p.
func Derive(p Prediction) View {
	low, high := ConfidenceInterval(p.Confidence, p.MarginOfError)
	v := View{
		Score:             shared.RoundInt(p.TrajectoryScore),
		ScoreLabel:        ScoreLabel(p.TrajectoryScore),
		ScoreTone:         scoreTone(p.TrajectoryScore),
		ConfidencePercent: shared.RoundInt(p.Confidence * 100),
		ConfidenceLow:     low,
		ConfidenceHigh:    high,
		ConfidenceLabel:   ConfidenceLabel(p.Confidence),
		Trend:             p.Trend,
		VelocityText:      VelocityText(p.Velocity),
		PredictedTier:     p.PredictedTier,
		Interpretation:    p.Interpretation,
		Components:        DeriveComponents(p.ComponentScores, p.ComponentWeights),
		AlumniTotal:       len(p.SimilarAlumni),
		Alumni:            TopAlumniViews(p.SimilarAlumni),
	}
	if v.PredictedTier == "" {
		v.PredictedTier = DefaultPredictedTier
	}
	return v
}

// ConfidenceInterval returns [confidence - margin/100, confidence + margin/100]
// scaled to whole percent.
func ConfidenceInterval(confidence, marginOfError float64) (low, high int) {
	m := marginOfError / 100
	return shared.RoundInt((confidence - m) * 100), shared.RoundInt((confidence + m) * 100)
}

// ScoreLabel is "Good" for scores of at least 70, otherwise "Fair".
func ScoreLabel(score float64) string {
	if score >= GoodScoreThreshold {
		return "Good"
	}
	return "Fair"
}

func scoreTone(score float64) shared.Tone {
	if score >= GoodScoreThreshold {
		return shared.ToneSuccess
	}
	return shared.ToneWarning
}

// ConfidenceLabel is "High" above 0.7, otherwise "Medium".
func ConfidenceLabel(confidence float64) string {
	if confidence > HighConfidenceThreshold {
		return "High"
	}
	return "Medium"
}

// VelocityText renders velocity as "+1.2 pts", or "Stable" when zero.
func VelocityText(velocity float64) string {
	if velocity == 0 {
		return "Stable"
	}
	sign := ""
	if velocity > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.1f pts", sign, velocity)
}

// DeriveComponents labels the academic, behavioral and skills scores.
func DeriveComponents(scores, weights Components) []ComponentView {
	return []ComponentView{
		component("Academic", scores.Academic, weights.Academic, AcademicStrongThreshold, "Strong", "Fair"),
		component("Behavioral", scores.Behavioral, weights.Behavioral, BehavioralGoodThreshold, "Good", "Needs Work"),
		component("Skills", scores.Skills, weights.Skills, SkillsGoodThreshold, "Good", "Fair"),
	}
}

func component(name string, score, weight, threshold float64, pass, fail string) ComponentView {
	c := ComponentView{
		Name:          name,
		Score:         shared.RoundInt(score),
		WeightPercent: shared.RoundInt(weight * 100),
		Label:         fail,
		Tone:          shared.ToneWarning,
	}
	if score >= threshold {
		c.Label = pass
		c.Tone = shared.ToneSuccess
	}
	return c
}

// TopAlumniViews returns display rows for the first TopAlumni matches.
func TopAlumniViews(alumni []SimilarAlumnus) []AlumnusView {
	n := min(len(alumni), TopAlumni)
	views := make([]AlumnusView, 0, n)
	for i := 0; i < n; i++ {
		a := alumni[i]
		views = append(views, AlumnusView{
			AlumniID:     a.AlumniID,
			Name:         fmt.Sprintf("Alumni %d", i+1),
			MatchPercent: shared.RoundInt(a.SimilarityScore * 100),
			CompanyTier:  a.CompanyTier,
			OutcomeScore: shared.RoundInt(a.OutcomeScore),
		})
	}
	return views
}

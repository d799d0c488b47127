package wellbeing

import (
	"fmt"
	"math"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
)

// Metric identifies one tracked wellbeing metric.
type Metric string

const (
	MetricScreenTime Metric = "screen_time"
	MetricFocusScore Metric = "focus_score"
	MetricSleep      Metric = "sleep"
)

// TrackedMetrics lists the metrics covered by gap analysis, in display order.
var TrackedMetrics = []Metric{MetricScreenTime, MetricFocusScore, MetricSleep}

// Gap is the labelled comparison of one metric against its benchmark.
type Gap struct {
	Metric  Metric  `json:"metric"`
	Title   string  `json:"title"`
	Student float64 `json:"student"`
	Optimal float64 `json:"optimal"`

	// Delta is Student - Optimal.
	Delta float64 `json:"delta"`

	// Label reads like "+4.0h Gap" or "-0.5h Ahead".
	Label string `json:"label"`

	// Versus reads like "9.0h vs 5.0h".
	Versus string `json:"versus"`

	Impact string      `json:"impact"`
	Tone   shared.Tone `json:"tone"`

	// StudentFill and OptimalFill are bar positions in percent, capped at 100.
	StudentFill float64 `json:"student_fill"`
	OptimalFill float64 `json:"optimal_fill"`
}

// IsGap reports whether the student is on the wrong side of the benchmark.
func (g Gap) IsGap() bool {
	if g.Metric == MetricScreenTime {
		return g.Student > g.Optimal
	}
	return g.Student < g.Optimal
}

// AnalyzeGaps labels every tracked metric of the comparison. The result
// has one entry per TrackedMetrics element, in order, or is nil for an
// empty comparison.
func AnalyzeGaps(c trajectory.Comparison) []Gap {
	if c.Empty {
		return nil
	}
	return []Gap{
		screenTimeGap(c.ScreenTime),
		focusScoreGap(c.FocusScore),
		sleepGap(c.Sleep),
	}
}

// Screen time: more is worse.
func screenTimeGap(m trajectory.MetricComparison) Gap {
	delta := m.Student - m.Optimal
	g := Gap{
		Metric:      MetricScreenTime,
		Title:       "Screen Time",
		Student:     m.Student,
		Optimal:     m.Optimal,
		Delta:       delta,
		Versus:      fmt.Sprintf("%.1fh vs %.1fh", m.Student, m.Optimal),
		StudentFill: capPercent(m.Student / 12 * 100),
		OptimalFill: capPercent(m.Optimal / 12 * 100),
	}
	if m.Student > m.Optimal {
		g.Label = fmt.Sprintf("+%.1fh Gap", delta)
	} else {
		g.Label = fmt.Sprintf("%.1fh Ahead", delta)
	}
	if m.Status == trajectory.StatusPoor {
		g.Impact, g.Tone = "High Impact", shared.ToneDanger
	} else {
		g.Impact, g.Tone = "Good", shared.ToneSuccess
	}
	return g
}

// Focus score: less is worse.
func focusScoreGap(m trajectory.MetricComparison) Gap {
	delta := m.Student - m.Optimal
	g := Gap{
		Metric:      MetricFocusScore,
		Title:       "Focus Score",
		Student:     m.Student,
		Optimal:     m.Optimal,
		Delta:       delta,
		Versus:      fmt.Sprintf("%.2f vs %.2f", m.Student, m.Optimal),
		StudentFill: m.Student * 100,
		OptimalFill: m.Optimal * 100,
	}
	if m.Student < m.Optimal {
		g.Label = fmt.Sprintf("%.2f Gap", delta)
	} else {
		g.Label = fmt.Sprintf("+%.2f Ahead", delta)
	}
	if m.Status == trajectory.StatusPoor {
		g.Impact, g.Tone = "Medium Impact", shared.ToneWarning
	} else {
		g.Impact, g.Tone = "Good", shared.ToneSuccess
	}
	return g
}

// Sleep: less is worse.
func sleepGap(m trajectory.MetricComparison) Gap {
	delta := m.Student - m.Optimal
	g := Gap{
		Metric:      MetricSleep,
		Title:       "Sleep",
		Student:     m.Student,
		Optimal:     m.Optimal,
		Delta:       delta,
		Versus:      fmt.Sprintf("%.1fh vs %.1fh", m.Student, m.Optimal),
		StudentFill: capPercent(m.Student / 10 * 100),
		OptimalFill: capPercent(m.Optimal / 10 * 100),
	}
	if m.Student < m.Optimal {
		g.Label = fmt.Sprintf("%.1fh Gap", delta)
	} else {
		g.Label = fmt.Sprintf("+%.1fh Ahead", delta)
	}
	if m.Status == trajectory.StatusPoor {
		g.Impact, g.Tone = "Medium Impact", shared.ToneWarning
	} else {
		g.Impact, g.Tone = "Strength", shared.ToneSuccess
	}
	return g
}

func capPercent(p float64) float64 {
	return math.Min(p, 100)
}

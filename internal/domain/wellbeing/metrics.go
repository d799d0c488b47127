// Package wellbeing derives presentation-ready metrics from raw behavioral
// telemetry and from the backend's benchmark comparison.
//
// Every function here is pure: inputs are never mutated and outputs depend
// only on inputs, so results can be memoized per fetch cycle and tested
// without any rendering harness.
package wellbeing

import (
	"sort"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONSTANTS
// ══════════════════════════════════════════════════════════════════════════════

const (
	// Substituted for a missing focus score before averaging.
	DefaultFocusScore = 0.5

	// Substituted for a missing sleep duration before averaging.
	DefaultSleepHours = 7.0
)

// Fallback is returned when no telemetry exists at all.
var Fallback = Metrics{
	AvgScreenTime: 6.2,
	AvgFocusScore: 0.65,
	AvgSleep:      7.8,
	AppBreakdown: AppBreakdown{
		Social:        35,
		Entertainment: 30,
		Educational:   25,
		Productivity:  10,
	},
}

// ══════════════════════════════════════════════════════════════════════════════
// TYPES
// ══════════════════════════════════════════════════════════════════════════════

// AppBreakdown holds whole-number percentages of app time per category.
// For non-empty input they sum to 100 within rounding error.
type AppBreakdown struct {
	Social        int `json:"social"`
	Entertainment int `json:"entertainment"`
	Educational   int `json:"educational"`
	Productivity  int `json:"productivity"`
}

// Total returns the sum of the four percentages.
func (b AppBreakdown) Total() int {
	return b.Social + b.Entertainment + b.Educational + b.Productivity
}

// Metrics is the derived wellbeing summary for one fetch cycle.
type Metrics struct {
	AvgScreenTime float64      `json:"avg_screen_time"`
	AvgFocusScore float64      `json:"avg_focus_score"`
	AvgSleep      float64      `json:"avg_sleep"`
	AppBreakdown  AppBreakdown `json:"app_breakdown"`
}

// ══════════════════════════════════════════════════════════════════════════════
// AGGREGATION
// ══════════════════════════════════════════════════════════════════════════════

// ComputeWellbeing averages the records and computes the app-time breakdown.
//
// An empty input yields Fallback. When the records report no app time at
// all, the breakdown is all zeros rather than NaN.
func ComputeWellbeing(records []student.BehavioralRecord) Metrics {
	if len(records) == 0 {
		return Fallback
	}

	var screen, focus, sleep float64
	var social, entertainment, educational, productivity float64
	for _, r := range records {
		screen += r.ScreenTimeHours

		if r.FocusScore != nil {
			focus += *r.FocusScore
		} else {
			focus += DefaultFocusScore
		}

		if r.SleepDurationHours != nil {
			sleep += *r.SleepDurationHours
		} else {
			sleep += DefaultSleepHours
		}

		social += r.SocialMediaHours
		entertainment += r.EntertainmentHours
		educational += r.EducationalAppHours
		productivity += r.ProductivityHours
	}

	n := float64(len(records))
	return Metrics{
		AvgScreenTime: screen / n,
		AvgFocusScore: focus / n,
		AvgSleep:      sleep / n,
		AppBreakdown:  breakdown(social, entertainment, educational, productivity),
	}
}

func breakdown(social, entertainment, educational, productivity float64) AppBreakdown {
	total := social + entertainment + educational + productivity
	if total <= 0 {
		return AppBreakdown{}
	}
	return AppBreakdown{
		Social:        percent(social, total),
		Entertainment: percent(entertainment, total),
		Educational:   percent(educational, total),
		Productivity:  percent(productivity, total),
	}
}

func percent(part, total float64) int {
	return shared.RoundInt(part / total * 100)
}

// SortByDate returns a copy of records ordered oldest first.
// Records with equal dates keep their relative order.
func SortByDate(records []student.BehavioralRecord) []student.BehavioralRecord {
	sorted := make([]student.BehavioralRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

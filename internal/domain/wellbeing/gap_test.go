package wellbeing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
)

func TestAnalyzeGaps_ScreenTimePoor(t *testing.T) {
	gaps := AnalyzeGaps(trajectory.Comparison{
		ScreenTime: trajectory.MetricComparison{Student: 9.0, Optimal: 5.0, Status: trajectory.StatusPoor},
	})

	require.Len(t, gaps, len(TrackedMetrics))
	g := gaps[0]
	assert.Equal(t, MetricScreenTime, g.Metric)
	assert.Equal(t, "+4.0h Gap", g.Label)
	assert.Equal(t, shared.ToneDanger, g.Tone)
	assert.NotEqual(t, shared.ToneSuccess, g.Tone)
	assert.Equal(t, "High Impact", g.Impact)
	assert.Equal(t, "9.0h vs 5.0h", g.Versus)
	assert.InDelta(t, 75.0, g.StudentFill, 1e-9)
	assert.True(t, g.IsGap())
}

func TestAnalyzeGaps_EmptyComparison(t *testing.T) {
	assert.Nil(t, AnalyzeGaps(trajectory.Comparison{Empty: true}))
}

func TestAnalyzeGaps_AheadLabels(t *testing.T) {
	gaps := AnalyzeGaps(trajectory.Comparison{
		ScreenTime: trajectory.MetricComparison{Student: 4.5, Optimal: 5.0, Status: trajectory.StatusGood},
		FocusScore: trajectory.MetricComparison{Student: 0.82, Optimal: 0.75, Status: trajectory.StatusGood},
		Sleep:      trajectory.MetricComparison{Student: 8.0, Optimal: 7.5, Status: trajectory.StatusGood},
	})

	assert.Equal(t, "-0.5h Ahead", gaps[0].Label)
	assert.Equal(t, "Good", gaps[0].Impact)
	assert.Equal(t, "+0.07 Ahead", gaps[1].Label)
	assert.Equal(t, "+0.5h Ahead", gaps[2].Label)
	assert.Equal(t, "Strength", gaps[2].Impact)
	for _, g := range gaps {
		assert.Equal(t, shared.ToneSuccess, g.Tone, g.Metric)
		assert.False(t, g.IsGap(), g.Metric)
	}
}

func TestAnalyzeGaps_FocusAndSleepBehind(t *testing.T) {
	gaps := AnalyzeGaps(trajectory.Comparison{
		FocusScore: trajectory.MetricComparison{Student: 0.55, Optimal: 0.75, Status: trajectory.StatusPoor},
		Sleep:      trajectory.MetricComparison{Student: 6.0, Optimal: 7.5, Status: trajectory.StatusPoor},
	})

	assert.Equal(t, "-0.20 Gap", gaps[1].Label)
	assert.Equal(t, shared.ToneWarning, gaps[1].Tone)
	assert.Equal(t, "Medium Impact", gaps[1].Impact)

	assert.Equal(t, "-1.5h Gap", gaps[2].Label)
	assert.Equal(t, shared.ToneWarning, gaps[2].Tone)
	assert.Equal(t, "6.0h vs 7.5h", gaps[2].Versus)
}

func TestAnalyzeGaps_FillCapped(t *testing.T) {
	gaps := AnalyzeGaps(trajectory.Comparison{
		ScreenTime: trajectory.MetricComparison{Student: 15, Optimal: 5},
		Sleep:      trajectory.MetricComparison{Student: 12, Optimal: 8},
	})

	assert.Equal(t, 100.0, gaps[0].StudentFill)
	assert.Equal(t, 100.0, gaps[2].StudentFill)
	assert.InDelta(t, 80.0, gaps[2].OptimalFill, 1e-9)
}

func TestAnalyzeGaps_TotalOverTrackedMetrics(t *testing.T) {
	gaps := AnalyzeGaps(trajectory.Comparison{})
	require.Len(t, gaps, 3)
	for i, m := range TrackedMetrics {
		assert.Equal(t, m, gaps[i].Metric)
		assert.NotEmpty(t, gaps[i].Label)
		assert.NotEmpty(t, gaps[i].Tone)
	}
}

func TestClassify(t *testing.T) {
	tiers := Classify(Metrics{AvgScreenTime: 9, AvgFocusScore: 0.6, AvgSleep: 7.5})
	assert.Equal(t, shared.ToneDanger, tiers.ScreenTime)
	assert.Equal(t, shared.ToneWarning, tiers.FocusScore)
	assert.Equal(t, shared.ToneSuccess, tiers.Sleep)

	tiers = Classify(Metrics{AvgScreenTime: 6, AvgFocusScore: 0.4, AvgSleep: 5.5})
	assert.Equal(t, shared.ToneSuccess, tiers.ScreenTime)
	assert.Equal(t, shared.ToneDanger, tiers.FocusScore)
	assert.Equal(t, shared.ToneDanger, tiers.Sleep)

	assert.Equal(t, "High vs Target (5h)", ScreenTimeNote(8.5))
	assert.Equal(t, "Target: <8h", ScreenTimeNote(8))
	assert.Equal(t, "Below target", SleepNote(6.9))
}

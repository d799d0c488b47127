package wellbeing

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
)

func ptr(v float64) *float64 { return &v }

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeWellbeing_EmptyReturnsFallback(t *testing.T) {
	m := ComputeWellbeing(nil)
	assert.Equal(t, 6.2, m.AvgScreenTime)
	assert.Equal(t, 0.65, m.AvgFocusScore)
	assert.Equal(t, 7.8, m.AvgSleep)
	assert.Equal(t, AppBreakdown{Social: 35, Entertainment: 30, Educational: 25, Productivity: 10}, m.AppBreakdown)

	assert.Equal(t, Fallback, ComputeWellbeing([]student.BehavioralRecord{}))
}

func TestComputeWellbeing_Averages(t *testing.T) {
	records := []student.BehavioralRecord{
		{Date: day(3), ScreenTimeHours: 8, FocusScore: ptr(0.8), SleepDurationHours: ptr(6),
			SocialMediaHours: 2, EntertainmentHours: 2, EducationalAppHours: 3, ProductivityHours: 1},
		{Date: day(2), ScreenTimeHours: 6, FocusScore: ptr(0.6), SleepDurationHours: ptr(8),
			SocialMediaHours: 1, EntertainmentHours: 1, EducationalAppHours: 1, ProductivityHours: 1},
	}

	m := ComputeWellbeing(records)
	assert.InDelta(t, 7.0, m.AvgScreenTime, 1e-9)
	assert.InDelta(t, 0.7, m.AvgFocusScore, 1e-9)
	assert.InDelta(t, 7.0, m.AvgSleep, 1e-9)

	// totals: social 3, entertainment 3, educational 4, productivity 2 of 12
	assert.Equal(t, AppBreakdown{Social: 25, Entertainment: 25, Educational: 33, Productivity: 17}, m.AppBreakdown)
}

func TestComputeWellbeing_MissingValuesSubstituted(t *testing.T) {
	records := []student.BehavioralRecord{
		{ScreenTimeHours: 5, SocialMediaHours: 1},
		{ScreenTimeHours: 7, SocialMediaHours: 1, SleepDurationHours: ptr(9)},
		{ScreenTimeHours: 6, SocialMediaHours: 1},
	}

	m := ComputeWellbeing(records)
	assert.Equal(t, 0.5, m.AvgFocusScore)
	assert.InDelta(t, (7.0+9.0+7.0)/3, m.AvgSleep, 1e-9)
	assert.Equal(t, 100, m.AppBreakdown.Social)
}

func TestComputeWellbeing_ZeroAppTimeGivesZeroBreakdown(t *testing.T) {
	records := []student.BehavioralRecord{
		{ScreenTimeHours: 4, FocusScore: ptr(0.9)},
		{ScreenTimeHours: 2},
	}

	m := ComputeWellbeing(records)
	assert.Equal(t, AppBreakdown{}, m.AppBreakdown)
	assert.InDelta(t, 3.0, m.AvgScreenTime, 1e-9)
}

func TestComputeWellbeing_BreakdownSumsToHundred(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		n := 1 + rng.Intn(14)
		records := make([]student.BehavioralRecord, n)
		for j := range records {
			records[j] = student.BehavioralRecord{
				ScreenTimeHours:     rng.Float64() * 12,
				SocialMediaHours:    rng.Float64() * 4,
				EntertainmentHours:  rng.Float64() * 4,
				EducationalAppHours: rng.Float64() * 4,
				ProductivityHours:   rng.Float64() * 4,
			}
		}
		// guarantee some app time
		records[0].SocialMediaHours += 0.1

		total := ComputeWellbeing(records).AppBreakdown.Total()
		require.InDeltaf(t, 100, total, 4, "iteration %d: breakdown total %d", i, total)
	}
}

func TestComputeWellbeing_DoesNotMutateInput(t *testing.T) {
	records := []student.BehavioralRecord{
		{Date: day(1), ScreenTimeHours: 3},
		{Date: day(5), ScreenTimeHours: 4},
	}
	before := append([]student.BehavioralRecord(nil), records...)

	_ = ComputeWellbeing(records)
	_ = SortByDate(records)

	assert.Equal(t, before, records)
}

func TestSortByDate(t *testing.T) {
	records := []student.BehavioralRecord{
		{Date: day(7), ScreenTimeHours: 7},
		{Date: day(5), ScreenTimeHours: 5},
		{Date: day(6), ScreenTimeHours: 6},
	}

	sorted := SortByDate(records)
	require.Len(t, sorted, 3)
	assert.Equal(t, day(5), sorted[0].Date)
	assert.Equal(t, day(6), sorted[1].Date)
	assert.Equal(t, day(7), sorted[2].Date)
}

func TestSummarizeSkills(t *testing.T) {
	assert.Equal(t, SkillSummary{}, SummarizeSkills(nil))

	got := SummarizeSkills([]student.Skill{
		{SkillName: "go", ProficiencyScore: 80},
		{SkillName: "sql", ProficiencyScore: 65},
	})
	assert.Equal(t, SkillSummary{Count: 2, AvgProficiency: 73}, got)
}

package wellbeing

import "github.com/trajectory-hub/student-dashboard/internal/domain/shared"

// Fixed presentation thresholds for the wellbeing cards.
const (
	ScreenTimeDangerHours  = 8.0
	ScreenTimeWarningHours = 6.0
	ScreenTimeTargetHours  = 5.0

	FocusDangerBelow  = 0.5
	FocusWarningBelow = 0.7

	SleepDangerBelow  = 6.0
	SleepWarningBelow = 7.0
)

// Tiers holds the tone of each wellbeing average.
type Tiers struct {
	ScreenTime shared.Tone `json:"screen_time"`
	FocusScore shared.Tone `json:"focus_score"`
	Sleep      shared.Tone `json:"sleep"`
}

// Classify assigns a tone to each average of m.
func Classify(m Metrics) Tiers {
	return Tiers{
		ScreenTime: screenTimeTone(m.AvgScreenTime),
		FocusScore: belowTone(m.AvgFocusScore, FocusDangerBelow, FocusWarningBelow),
		Sleep:      belowTone(m.AvgSleep, SleepDangerBelow, SleepWarningBelow),
	}
}

func screenTimeTone(hours float64) shared.Tone {
	switch {
	case hours > ScreenTimeDangerHours:
		return shared.ToneDanger
	case hours > ScreenTimeWarningHours:
		return shared.ToneWarning
	default:
		return shared.ToneSuccess
	}
}

func belowTone(v, danger, warning float64) shared.Tone {
	switch {
	case v < danger:
		return shared.ToneDanger
	case v < warning:
		return shared.ToneWarning
	default:
		return shared.ToneSuccess
	}
}

// ScreenTimeNote is the caption under the screen-time card.
func ScreenTimeNote(avg float64) string {
	if avg > ScreenTimeDangerHours {
		return "High vs Target (5h)"
	}
	return "Target: <8h"
}

// SleepNote is the caption under the sleep card.
func SleepNote(avg float64) string {
	if avg >= SleepWarningBelow {
		return "Good range"
	}
	return "Below target"
}

package student

import "time"

// BehavioralRecord is one calendar day of digital-wellbeing telemetry.
// Records arrive newest first, but callers must not rely on that order.
type BehavioralRecord struct {
	Date time.Time

	ScreenTimeHours     float64
	SocialMediaHours    float64
	EntertainmentHours  float64
	EducationalAppHours float64
	ProductivityHours   float64

	// FocusScore is in [0,1]; nil when the device did not report it.
	FocusScore *float64

	SleepDurationHours *float64
	SleepQuality       *string
}

// AppHours returns the total hours across the four tracked app categories.
func (r BehavioralRecord) AppHours() float64 {
	return r.SocialMediaHours + r.EntertainmentHours + r.EducationalAppHours + r.ProductivityHours
}

package student

import "time"

// ══════════════════════════════════════════════════════════════════════════════
// PROFILE
// ══════════════════════════════════════════════════════════════════════════════

// Profile holds the scalar academic attributes of a student.
// Every optional attribute is a pointer; nil means "not yet recorded".
type Profile struct {
	ID     int64
	UserID int64
	Name   string
	Major  string

	Semester          *int
	GPA               *float64
	Attendance        *float64 // percent
	StudyHoursPerWeek *float64
	ProjectCount      *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// SKILL
// ══════════════════════════════════════════════════════════════════════════════

// Skill is one assessed skill of the student.
type Skill struct {
	ID               int64
	SkillName        string
	ProficiencyScore float64
	QuizScore        *float64
	VoiceScore       *float64
	MarketWeight     float64
	LastAssessedAt   time.Time
}

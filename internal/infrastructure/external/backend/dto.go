package backend

// ══════════════════════════════════════════════════════════════════════════════
// AUTH DTOs
// ══════════════════════════════════════════════════════════════════════════════

// RegisterRequestDTO is the JSON body of POST /api/auth/register.
type RegisterRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// TokenDTO is returned by login and register.
type TokenDTO struct {
	// AccessToken is the opaque bearer credential.
	AccessToken string `json:"access_token"`

	// TokenType is always "bearer".
	TokenType string `json:"token_type"`

	// User is informational only; identity is confirmed through /me.
	User *UserDTO `json:"user,omitempty"`
}

// UserDTO is the identity returned by GET /api/auth/me.
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ProfileDTO is the body of GET /api/student/profile.
type ProfileDTO struct {
	ID                int64    `json:"id"`
	UserID            int64    `json:"user_id"`
	Name              string   `json:"name"`
	Major             string   `json:"major"`
	Semester          *int     `json:"semester"`
	GPA               *float64 `json:"gpa"`
	Attendance        *float64 `json:"attendance"`
	StudyHoursPerWeek *float64 `json:"study_hours_per_week"`
	ProjectCount      *int     `json:"project_count"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// BehavioralDTO is one element of the behavioral "data" envelope.
type BehavioralDTO struct {
	ID                  int64    `json:"id"`
	Date                string   `json:"date"`
	ScreenTimeHours     float64  `json:"screen_time_hours"`
	EducationalAppHours float64  `json:"educational_app_hours"`
	SocialMediaHours    float64  `json:"social_media_hours"`
	EntertainmentHours  float64  `json:"entertainment_hours"`
	ProductivityHours   float64  `json:"productivity_hours"`
	FocusScore          *float64 `json:"focus_score"`
	SleepDurationHours  *float64 `json:"sleep_duration_hours"`
	SleepQuality        *string  `json:"sleep_quality"`
}

// SkillDTO is one element of the skills "skills" envelope.
type SkillDTO struct {
	ID               int64    `json:"id"`
	SkillName        string   `json:"skill_name"`
	ProficiencyScore float64  `json:"proficiency_score"`
	QuizScore        *float64 `json:"quiz_score"`
	VoiceScore       *float64 `json:"voice_score"`
	MarketWeight     float64  `json:"market_weight"`
	LastAssessedAt   string   `json:"last_assessed_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// TRAJECTORY DTOs
// ══════════════════════════════════════════════════════════════════════════════

// ComponentsDTO holds academic/behavioral/skills values.
type ComponentsDTO struct {
	Academic   float64 `json:"academic"`
	Behavioral float64 `json:"behavioral"`
	Skills     float64 `json:"skills"`
}

// SimilarAlumnusDTO is one alumni match.
type SimilarAlumnusDTO struct {
	AlumniID        int64   `json:"alumni_id"`
	SimilarityScore float64 `json:"similarity_score"`
	CompanyTier     string  `json:"company_tier"`
	OutcomeScore    float64 `json:"outcome_score"`
}

// PredictionDTO is the body of POST /api/predict.
type PredictionDTO struct {
	TrajectoryScore  float64             `json:"trajectory_score"`
	ComponentScores  ComponentsDTO       `json:"component_scores"`
	ComponentWeights ComponentsDTO       `json:"component_weights"`
	Confidence       float64             `json:"confidence"`
	MarginOfError    float64             `json:"margin_of_error"`
	Trend            string              `json:"trend"`
	Velocity         float64             `json:"velocity"`
	PredictedTier    string              `json:"predicted_tier"`
	Interpretation   string              `json:"interpretation"`
	SimilarAlumni    []SimilarAlumnusDTO `json:"similar_alumni"`
}

// RangeDTO is an optimal range.
type RangeDTO struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CorrelationsDTO is the correlations block of the insights payload.
type CorrelationsDTO struct {
	ScreenTimeVsGPA        float64             `json:"screen_time_vs_gpa"`
	FocusScoreVsTrajectory float64             `json:"focus_score_vs_trajectory"`
	SleepVsAcademic        float64             `json:"sleep_vs_academic"`
	SampleSize             int                 `json:"sample_size"`
	OptimalRanges          map[string]RangeDTO `json:"optimal_ranges"`
	Interpretation         map[string]string   `json:"interpretation"`
}

// AtRiskFlagDTO is one detected risk pattern.
type AtRiskFlagDTO struct {
	Flag        string   `json:"flag"`
	Severity    string   `json:"severity"`
	Description string   `json:"description"`
	MetricValue *float64 `json:"metric_value"`
	Threshold   *float64 `json:"threshold"`
}

// ComparisonMetricDTO compares one metric with the alumni benchmark.
type ComparisonMetricDTO struct {
	Student float64 `json:"student"`
	Optimal float64 `json:"optimal"`
	Status  string  `json:"status"`
}

// InsightsDTO is the body of GET /api/behavioral/insights.
type InsightsDTO struct {
	Correlations    CorrelationsDTO                `json:"correlations"`
	AtRiskFlags     []AtRiskFlagDTO                `json:"at_risk_flags"`
	Comparison      map[string]ComparisonMetricDTO `json:"comparison"`
	Recommendations []string                       `json:"recommendations"`
}

// AlumniComparisonDTO is the body of GET /api/behavioral/comparison.
type AlumniComparisonDTO struct {
	StudentID     int64               `json:"student_id"`
	ScreenTime    ComparisonMetricDTO `json:"screen_time"`
	FocusScore    ComparisonMetricDTO `json:"focus_score"`
	Sleep         ComparisonMetricDTO `json:"sleep"`
	OverallStatus string              `json:"overall_status"`
	Message       string              `json:"message"`
}

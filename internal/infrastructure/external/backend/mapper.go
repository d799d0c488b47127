package backend

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER - DTO to domain transformations
// ══════════════════════════════════════════════════════════════════════════════

// ErrNilDTO is returned when a nil DTO is mapped.
var ErrNilDTO = errors.New("backend: nil dto")

// Mapper converts backend DTOs into domain values and rejects payloads
// that do not satisfy the domain's ranges. Every error it returns is
// reported by the client as a malformed response.
type Mapper struct{}

// NewMapper creates a new Mapper instance.
func NewMapper() *Mapper {
	return &Mapper{}
}

// TokenFromDTO extracts the access token.
func (m *Mapper) TokenFromDTO(dto *TokenDTO) (string, error) {
	if dto == nil {
		return "", ErrNilDTO
	}
	if strings.TrimSpace(dto.AccessToken) == "" {
		return "", errors.New("access_token is empty")
	}
	return dto.AccessToken, nil
}

// UserFromDTO converts the /me payload.
func (m *Mapper) UserFromDTO(dto *UserDTO) (session.User, error) {
	if dto == nil {
		return session.User{}, ErrNilDTO
	}
	if dto.ID <= 0 {
		return session.User{}, fmt.Errorf("user id %d is not positive", dto.ID)
	}
	if dto.Email == "" {
		return session.User{}, errors.New("user email is empty")
	}
	return session.User{
		ID:    dto.ID,
		Email: dto.Email,
		Role:  session.Role(dto.Role),
	}, nil
}

// ProfileFromDTO converts the profile payload.
func (m *Mapper) ProfileFromDTO(dto *ProfileDTO) (student.Profile, error) {
	if dto == nil {
		return student.Profile{}, ErrNilDTO
	}
	createdAt, err := timeutil.ParseTimestamp(dto.CreatedAt)
	if err != nil {
		return student.Profile{}, fmt.Errorf("profile created_at: %w", err)
	}
	updatedAt, err := timeutil.ParseTimestamp(dto.UpdatedAt)
	if err != nil {
		return student.Profile{}, fmt.Errorf("profile updated_at: %w", err)
	}
	if dto.Attendance != nil && !inRange(*dto.Attendance, 0, 100) {
		return student.Profile{}, fmt.Errorf("attendance %v out of range", *dto.Attendance)
	}

	return student.Profile{
		ID:                dto.ID,
		UserID:            dto.UserID,
		Name:              dto.Name,
		Major:             dto.Major,
		Semester:          dto.Semester,
		GPA:               dto.GPA,
		Attendance:        dto.Attendance,
		StudyHoursPerWeek: dto.StudyHoursPerWeek,
		ProjectCount:      dto.ProjectCount,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

// BehavioralFromDTOs converts the behavioral records, keeping their order.
func (m *Mapper) BehavioralFromDTOs(dtos []BehavioralDTO) ([]student.BehavioralRecord, error) {
	records := make([]student.BehavioralRecord, 0, len(dtos))
	for i := range dtos {
		dto := &dtos[i]

		date, err := timeutil.ParseDate(dto.Date)
		if err != nil {
			return nil, fmt.Errorf("behavioral[%d]: %w", i, err)
		}
		for _, h := range []float64{
			dto.ScreenTimeHours, dto.SocialMediaHours, dto.EntertainmentHours,
			dto.EducationalAppHours, dto.ProductivityHours,
		} {
			if !inRange(h, 0, 24) {
				return nil, fmt.Errorf("behavioral[%d]: hours %v out of range", i, h)
			}
		}
		if dto.FocusScore != nil && !inRange(*dto.FocusScore, 0, 1) {
			return nil, fmt.Errorf("behavioral[%d]: focus_score %v out of range", i, *dto.FocusScore)
		}
		if dto.SleepDurationHours != nil && !inRange(*dto.SleepDurationHours, 0, 24) {
			return nil, fmt.Errorf("behavioral[%d]: sleep %v out of range", i, *dto.SleepDurationHours)
		}

		records = append(records, student.BehavioralRecord{
			Date:                date,
			ScreenTimeHours:     dto.ScreenTimeHours,
			SocialMediaHours:    dto.SocialMediaHours,
			EntertainmentHours:  dto.EntertainmentHours,
			EducationalAppHours: dto.EducationalAppHours,
			ProductivityHours:   dto.ProductivityHours,
			FocusScore:          dto.FocusScore,
			SleepDurationHours:  dto.SleepDurationHours,
			SleepQuality:        dto.SleepQuality,
		})
	}
	return records, nil
}

// SkillsFromDTOs converts the skills list.
func (m *Mapper) SkillsFromDTOs(dtos []SkillDTO) ([]student.Skill, error) {
	skills := make([]student.Skill, 0, len(dtos))
	for i := range dtos {
		dto := &dtos[i]
		if dto.SkillName == "" {
			return nil, fmt.Errorf("skills[%d]: skill_name is empty", i)
		}
		if !inRange(dto.ProficiencyScore, 0, 100) {
			return nil, fmt.Errorf("skills[%d]: proficiency %v out of range", i, dto.ProficiencyScore)
		}
		assessed, err := timeutil.ParseTimestamp(dto.LastAssessedAt)
		if err != nil {
			return nil, fmt.Errorf("skills[%d]: %w", i, err)
		}
		skills = append(skills, student.Skill{
			ID:               dto.ID,
			SkillName:        dto.SkillName,
			ProficiencyScore: dto.ProficiencyScore,
			QuizScore:        dto.QuizScore,
			VoiceScore:       dto.VoiceScore,
			MarketWeight:     dto.MarketWeight,
			LastAssessedAt:   assessed,
		})
	}
	return skills, nil
}

// PredictionFromDTO converts the trajectory prediction.
func (m *Mapper) PredictionFromDTO(dto *PredictionDTO) (trajectory.Prediction, error) {
	if dto == nil {
		return trajectory.Prediction{}, ErrNilDTO
	}
	if !inRange(dto.TrajectoryScore, 0, 100) {
		return trajectory.Prediction{}, fmt.Errorf("trajectory_score %v out of range", dto.TrajectoryScore)
	}
	if !inRange(dto.Confidence, 0, 1) {
		return trajectory.Prediction{}, fmt.Errorf("confidence %v out of range", dto.Confidence)
	}
	trend := trajectory.Trend(strings.ToLower(dto.Trend))
	if !trend.IsValid() {
		return trajectory.Prediction{}, fmt.Errorf("unknown trend %q", dto.Trend)
	}

	alumni := make([]trajectory.SimilarAlumnus, 0, len(dto.SimilarAlumni))
	for _, a := range dto.SimilarAlumni {
		alumni = append(alumni, trajectory.SimilarAlumnus{
			AlumniID:        a.AlumniID,
			SimilarityScore: a.SimilarityScore,
			CompanyTier:     a.CompanyTier,
			OutcomeScore:    a.OutcomeScore,
		})
	}

	return trajectory.Prediction{
		TrajectoryScore:  dto.TrajectoryScore,
		ComponentScores:  componentsFromDTO(dto.ComponentScores),
		ComponentWeights: componentsFromDTO(dto.ComponentWeights),
		Confidence:       dto.Confidence,
		MarginOfError:    dto.MarginOfError,
		Trend:            trend,
		Velocity:         dto.Velocity,
		PredictedTier:    dto.PredictedTier,
		Interpretation:   dto.Interpretation,
		SimilarAlumni:    alumni,
	}, nil
}

// InsightsFromDTO converts the behavioral insights. All three comparison
// metrics must be present.
func (m *Mapper) InsightsFromDTO(dto *InsightsDTO) (trajectory.Insights, error) {
	if dto == nil {
		return trajectory.Insights{}, ErrNilDTO
	}

	comparison, err := comparisonFromMap(dto.Comparison)
	if err != nil {
		return trajectory.Insights{}, err
	}

	flags := make([]trajectory.AtRiskFlag, 0, len(dto.AtRiskFlags))
	for _, f := range dto.AtRiskFlags {
		flags = append(flags, trajectory.AtRiskFlag{
			Flag:        f.Flag,
			Severity:    f.Severity,
			Description: f.Description,
			MetricValue: f.MetricValue,
			Threshold:   f.Threshold,
		})
	}

	c := dto.Correlations
	return trajectory.Insights{
		Correlations: trajectory.Correlations{
			ScreenTimeVsGPA:        c.ScreenTimeVsGPA,
			FocusScoreVsTrajectory: c.FocusScoreVsTrajectory,
			SleepVsAcademic:        c.SleepVsAcademic,
			SampleSize:             c.SampleSize,
			OptimalScreenTime:      rangeFromDTO(c.OptimalRanges["screen_time"]),
			OptimalFocusScore:      rangeFromDTO(c.OptimalRanges["focus_score"]),
			OptimalSleep:           rangeFromDTO(c.OptimalRanges["sleep"]),
			Interpretation:         c.Interpretation,
		},
		AtRiskFlags:     flags,
		Comparison:      comparison,
		Recommendations: dto.Recommendations,
	}, nil
}

// AlumniComparisonFromDTO converts the standalone comparison payload.
func (m *Mapper) AlumniComparisonFromDTO(dto *AlumniComparisonDTO) (trajectory.AlumniComparison, error) {
	if dto == nil {
		return trajectory.AlumniComparison{}, ErrNilDTO
	}
	comparison, err := comparisonFromMap(map[string]ComparisonMetricDTO{
		"screen_time": dto.ScreenTime,
		"focus_score": dto.FocusScore,
		"sleep":       dto.Sleep,
	})
	if err != nil {
		return trajectory.AlumniComparison{}, err
	}
	return trajectory.AlumniComparison{
		StudentID:     dto.StudentID,
		Comparison:    comparison,
		OverallStatus: trajectory.ComparisonStatus(dto.OverallStatus),
		Message:       dto.Message,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// comparisonFromMap accepts either all three metrics or none. The backend
// sends an empty object for a student without behavioral records.
func comparisonFromMap(in map[string]ComparisonMetricDTO) (trajectory.Comparison, error) {
	if len(in) == 0 {
		return trajectory.Comparison{Empty: true}, nil
	}
	var out trajectory.Comparison
	targets := []struct {
		key string
		dst *trajectory.MetricComparison
	}{
		{"screen_time", &out.ScreenTime},
		{"focus_score", &out.FocusScore},
		{"sleep", &out.Sleep},
	}
	for _, t := range targets {
		dto, ok := in[t.key]
		if !ok {
			return trajectory.Comparison{}, fmt.Errorf("comparison.%s missing", t.key)
		}
		status := trajectory.ComparisonStatus(strings.ToLower(dto.Status))
		if !status.IsValid() {
			return trajectory.Comparison{}, fmt.Errorf("comparison.%s: unknown status %q", t.key, dto.Status)
		}
		*t.dst = trajectory.MetricComparison{
			Student: dto.Student,
			Optimal: dto.Optimal,
			Status:  status,
		}
	}
	return out, nil
}

func componentsFromDTO(dto ComponentsDTO) trajectory.Components {
	return trajectory.Components{
		Academic:   dto.Academic,
		Behavioral: dto.Behavioral,
		Skills:     dto.Skills,
	}
}

func rangeFromDTO(dto RangeDTO) trajectory.Range {
	return trajectory.Range{Min: dto.Min, Max: dto.Max}
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

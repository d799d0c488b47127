// Package presenter formats the dashboard for display.
// Presenters turn a query.Snapshot into a JSON-ready view and into the
// plain-text report printed by the CLI.
package presenter

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/internal/domain/session"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/internal/domain/wellbeing"
	"github.com/trajectory-hub/student-dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DASHBOARD PRESENTER
// Builds the display view of a dashboard snapshot. Every label and tone is
// computed here or in the domain; renderers only lay the view out.
// ══════════════════════════════════════════════════════════════════════════════

// Retry hints attached to error views.
const (
	CLIRetryHint  = "run `dashboard show` again to retry"
	HTTPRetryHint = "POST /api/dashboard/reload to retry"
)

// NotAvailable replaces optional profile values that were never recorded.
const NotAvailable = "N/A"

// DashboardPresenter builds DashboardView values.
type DashboardPresenter struct {
	retryHint string
}

// NewDashboardPresenter creates a presenter whose error views carry retryHint.
func NewDashboardPresenter(retryHint string) *DashboardPresenter {
	return &DashboardPresenter{retryHint: retryHint}
}

// titleCase upper-cases the first letter of each word. A Caser keeps
// state, so one is made per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// ─────────────────────────────────────────────────────────────────────────────
// VIEW TYPES
// ─────────────────────────────────────────────────────────────────────────────

// DashboardView is the complete display state of the dashboard.
type DashboardView struct {
	Status      query.Status `json:"status"`
	DisplayName string       `json:"display_name"`
	Message     string       `json:"message,omitempty"`
	RetryHint   string       `json:"retry_hint,omitempty"`
	LoadedAt    *time.Time   `json:"loaded_at,omitempty"`

	Profile         *ProfileView                    `json:"profile,omitempty"`
	Wellbeing       *WellbeingView                  `json:"wellbeing,omitempty"`
	Trajectory      *TrajectoryView                 `json:"trajectory,omitempty"`
	Gaps            []wellbeing.Gap                 `json:"gaps,omitempty"`
	Skills          *wellbeing.SkillSummary         `json:"skills,omitempty"`
	Recommendations []trajectory.RecommendationView `json:"recommendations,omitempty"`
	AtRisk          []AtRiskView                    `json:"at_risk,omitempty"`
	Trend           []TrendPoint                    `json:"trend,omitempty"`
}

// Ready reports whether the view carries data.
func (v *DashboardView) Ready() bool { return v.Status == query.StatusReady }

// ProfileView is the profile card.
type ProfileView struct {
	Name        string `json:"name"`
	Major       string `json:"major"`
	Semester    string `json:"semester"`
	GPA         string `json:"gpa"`
	Attendance  string `json:"attendance"`
	StudyPerDay string `json:"study_per_day"`
	Projects    string `json:"projects"`
}

// WellbeingView holds the three wellbeing cards and the app breakdown.
type WellbeingView struct {
	ScreenTime   MetricCard             `json:"screen_time"`
	FocusScore   MetricCard             `json:"focus_score"`
	Sleep        MetricCard             `json:"sleep"`
	AppBreakdown wellbeing.AppBreakdown `json:"app_breakdown"`
}

// MetricCard is one formatted average with its tier.
type MetricCard struct {
	Value     string      `json:"value"`
	Tone      shared.Tone `json:"tone"`
	TierLabel string      `json:"tier_label"`
	Note      string      `json:"note,omitempty"`
}

// TrajectoryView wraps the domain view with a display-cased trend.
type TrajectoryView struct {
	trajectory.View
	TrendLabel string `json:"trend_label"`
}

// AtRiskView is one at-risk flag.
type AtRiskView struct {
	Flag        string `json:"flag"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// TrendPoint is one day of the behavioral trend, oldest first.
type TrendPoint struct {
	Date       string   `json:"date"`
	ScreenTime float64  `json:"screen_time"`
	FocusScore *float64 `json:"focus_score,omitempty"`
	Sleep      *float64 `json:"sleep,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// BUILD
// ─────────────────────────────────────────────────────────────────────────────

// Build converts a snapshot into a view. user may be nil.
func (p *DashboardPresenter) Build(snap query.Snapshot, user *session.User) *DashboardView {
	v := &DashboardView{
		Status:      snap.Status,
		DisplayName: user.DisplayName(),
	}

	if snap.Status == query.StatusError {
		v.Message = snap.Message
		if v.Message == "" {
			v.Message = query.DefaultErrorMessage
		}
		v.RetryHint = p.retryHint
		return v
	}
	// A reload in flight keeps showing the previous data set.
	if snap.Data == nil {
		return v
	}

	d := snap.Data
	derived := d.Derived
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		v.LoadedAt = &loaded
	}

	v.Profile = p.profile(d.Profile)
	v.Wellbeing = p.wellbeing(derived.Wellbeing, derived.Tiers)
	v.Trajectory = &TrajectoryView{
		View:       derived.Trajectory,
		TrendLabel: titleCase(string(derived.Trajectory.Trend)),
	}
	v.Gaps = derived.Gaps
	summary := derived.SkillSummary
	v.Skills = &summary
	v.Recommendations = derived.Recommendations
	for _, f := range d.Insights.AtRiskFlags {
		v.AtRisk = append(v.AtRisk, AtRiskView{
			Flag:        f.Flag,
			Severity:    titleCase(f.Severity),
			Description: f.Description,
		})
	}
	for _, r := range derived.Trend {
		v.Trend = append(v.Trend, TrendPoint{
			Date:       timeutil.FormatDate(r.Date),
			ScreenTime: r.ScreenTimeHours,
			FocusScore: r.FocusScore,
			Sleep:      r.SleepDurationHours,
		})
	}
	return v
}

func (p *DashboardPresenter) profile(pr student.Profile) *ProfileView {
	v := &ProfileView{
		Name:        pr.Name,
		Major:       pr.Major,
		Semester:    NotAvailable,
		GPA:         NotAvailable,
		Attendance:  NotAvailable,
		StudyPerDay: NotAvailable,
		Projects:    "0",
	}
	if pr.Semester != nil {
		v.Semester = fmt.Sprintf("%d", *pr.Semester)
	}
	if pr.GPA != nil {
		v.GPA = fmt.Sprintf("%.1f", *pr.GPA)
	}
	if pr.Attendance != nil {
		v.Attendance = fmt.Sprintf("%d%%", shared.RoundInt(*pr.Attendance))
	}
	if pr.StudyHoursPerWeek != nil {
		v.StudyPerDay = fmt.Sprintf("%dh", shared.RoundInt(*pr.StudyHoursPerWeek/7))
	}
	if pr.ProjectCount != nil {
		v.Projects = fmt.Sprintf("%d", *pr.ProjectCount)
	}
	return v
}

func (p *DashboardPresenter) wellbeing(m wellbeing.Metrics, t wellbeing.Tiers) *WellbeingView {
	return &WellbeingView{
		ScreenTime: MetricCard{
			Value:     fmt.Sprintf("%.1fh", m.AvgScreenTime),
			Tone:      t.ScreenTime,
			TierLabel: p.tierLabel(t.ScreenTime),
			Note:      wellbeing.ScreenTimeNote(m.AvgScreenTime),
		},
		FocusScore: MetricCard{
			Value:     fmt.Sprintf("%.2f", m.AvgFocusScore),
			Tone:      t.FocusScore,
			TierLabel: p.tierLabel(t.FocusScore),
		},
		Sleep: MetricCard{
			Value:     fmt.Sprintf("%.1fh", m.AvgSleep),
			Tone:      t.Sleep,
			TierLabel: p.tierLabel(t.Sleep),
			Note:      wellbeing.SleepNote(m.AvgSleep),
		},
		AppBreakdown: m.AppBreakdown,
	}
}

func (p *DashboardPresenter) tierLabel(t shared.Tone) string {
	return titleCase(string(t))
}

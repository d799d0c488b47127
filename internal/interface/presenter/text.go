package presenter

import (
	"fmt"
	"strings"

	"github.com/trajectory-hub/student-dashboard/internal/application/query"
	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/internal/domain/wellbeing"
	"github.com/trajectory-hub/student-dashboard/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEXT RENDERING
// Plain-text layout of a DashboardView for the terminal.
// ══════════════════════════════════════════════════════════════════════════════

const barLength = 20

// FormatText lays v out as a multi-section terminal report.
func (p *DashboardPresenter) FormatText(v *DashboardView) string {
	var sb strings.Builder

	switch {
	case v.Status == query.StatusError:
		sb.WriteString(p.formatError(v))
		return sb.String()
	case !v.Ready() && v.Trajectory == nil:
		fmt.Fprintf(&sb, "Welcome back, %s\n\nLoading dashboard...\n", v.DisplayName)
		return sb.String()
	}

	fmt.Fprintf(&sb, "Welcome back, %s\n", v.DisplayName)
	if v.LoadedAt != nil {
		fmt.Fprintf(&sb, "Updated %s\n", v.LoadedAt.Format(timeutil.DateLayout+" 15:04"))
	}

	sb.WriteString("\n")
	sb.WriteString(p.formatTrajectory(v))
	sb.WriteString("\n")
	sb.WriteString(p.formatProfile(v.Profile))
	sb.WriteString("\n")
	sb.WriteString(p.formatWellbeing(v.Wellbeing))
	if len(v.Gaps) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.formatGaps(v))
	}

	if len(v.AtRisk) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.formatAtRisk(v.AtRisk))
	}
	if len(v.Recommendations) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.formatRecommendations(v))
	}
	if len(v.Trend) > 0 {
		sb.WriteString("\n")
		sb.WriteString(p.formatTrend(v.Trend))
	}
	return sb.String()
}

func (p *DashboardPresenter) formatError(v *DashboardView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", v.Message)
	if v.RetryHint != "" {
		fmt.Fprintf(&sb, "(%s)\n", v.RetryHint)
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// SECTIONS
// ─────────────────────────────────────────────────────────────────────────────

func (p *DashboardPresenter) formatTrajectory(v *DashboardView) string {
	t := v.Trajectory
	var sb strings.Builder
	sb.WriteString("== Career Trajectory ==\n")
	fmt.Fprintf(&sb, "Score       %d/100 %s\n", t.Score, toneTag(t.ScoreTone, t.ScoreLabel))
	fmt.Fprintf(&sb, "Confidence  %d%% (%s, %d-%d%%)\n",
		t.ConfidencePercent, t.ConfidenceLabel, t.ConfidenceLow, t.ConfidenceHigh)
	fmt.Fprintf(&sb, "Trend       %s (%s)\n", t.TrendLabel, t.VelocityText)
	fmt.Fprintf(&sb, "Tier        %s\n", t.PredictedTier)
	if t.Interpretation != "" {
		fmt.Fprintf(&sb, "            %s\n", t.Interpretation)
	}

	for _, c := range t.Components {
		fmt.Fprintf(&sb, "  %-10s %3d  weight %2d%%  %s\n", c.Name, c.Score, c.WeightPercent, toneTag(c.Tone, c.Label))
	}
	if v.Skills != nil {
		fmt.Fprintf(&sb, "  Skills tracked: %d, avg proficiency %d\n", v.Skills.Count, v.Skills.AvgProficiency)
	}

	if len(t.Alumni) > 0 {
		fmt.Fprintf(&sb, "Similar alumni (%d matches)\n", t.AlumniTotal)
		for _, a := range t.Alumni {
			fmt.Fprintf(&sb, "  %-9s %3d%% Match  %-8s score %d\n", a.Name, a.MatchPercent, a.CompanyTier, a.OutcomeScore)
		}
	}
	return sb.String()
}

func (p *DashboardPresenter) formatProfile(pr *ProfileView) string {
	if pr == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("== Profile ==\n")
	fmt.Fprintf(&sb, "%s, %s (semester %s)\n", pr.Name, pr.Major, pr.Semester)
	fmt.Fprintf(&sb, "GPA %s | Attendance %s | Study %s/day | Projects %s\n",
		pr.GPA, pr.Attendance, pr.StudyPerDay, pr.Projects)
	return sb.String()
}

func (p *DashboardPresenter) formatWellbeing(w *WellbeingView) string {
	if w == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("== Digital Wellbeing ==\n")
	card := func(name string, c MetricCard) {
		fmt.Fprintf(&sb, "%-12s %-6s %s", name, c.Value, toneTag(c.Tone, c.TierLabel))
		if c.Note != "" {
			fmt.Fprintf(&sb, "  %s", c.Note)
		}
		sb.WriteString("\n")
	}
	card("Screen time", w.ScreenTime)
	card("Focus", w.FocusScore)
	card("Sleep", w.Sleep)

	b := w.AppBreakdown
	fmt.Fprintf(&sb, "Apps: social %d%% | entertainment %d%% | educational %d%% | productivity %d%%\n",
		b.Social, b.Entertainment, b.Educational, b.Productivity)
	return sb.String()
}

func (p *DashboardPresenter) formatGaps(v *DashboardView) string {
	var sb strings.Builder
	sb.WriteString("== Alumni Benchmark ==\n")
	for _, g := range v.Gaps {
		fmt.Fprintf(&sb, "%-12s %-14s %-13s %s\n", g.Title, g.Label, g.Versus, toneTag(g.Tone, g.Impact))
		fmt.Fprintf(&sb, "  you     %s\n", progressBar(g.StudentFill))
		fmt.Fprintf(&sb, "  optimal %s\n", progressBar(g.OptimalFill))
	}
	return sb.String()
}

// FormatAlumniComparison renders the standalone benchmark returned by the
// alumni comparison endpoint.
func (p *DashboardPresenter) FormatAlumniComparison(c trajectory.AlumniComparison) string {
	var sb strings.Builder
	sb.WriteString(p.formatGaps(&DashboardView{Gaps: wellbeing.AnalyzeGaps(c.Comparison)}))
	if c.OverallStatus != "" {
		fmt.Fprintf(&sb, "Overall: %s\n", titleCase(string(c.OverallStatus)))
	}
	if c.Message != "" {
		sb.WriteString(c.Message + "\n")
	}
	return sb.String()
}

func (p *DashboardPresenter) formatAtRisk(flags []AtRiskView) string {
	var sb strings.Builder
	sb.WriteString("== At Risk ==\n")
	for _, f := range flags {
		fmt.Fprintf(&sb, "! [%s] %s\n", f.Severity, f.Description)
	}
	return sb.String()
}

func (p *DashboardPresenter) formatRecommendations(v *DashboardView) string {
	var sb strings.Builder
	sb.WriteString("== Recommendations ==\n")
	for i, r := range v.Recommendations {
		fmt.Fprintf(&sb, "%d. %s %s\n", i+1, r.Text, toneTag(r.Tone, r.Impact))
	}
	return sb.String()
}

func (p *DashboardPresenter) formatTrend(points []TrendPoint) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== Last %d Days ==\n", len(points))
	for _, pt := range points {
		fmt.Fprintf(&sb, "%s  screen %4.1fh  focus %s  sleep %s\n",
			pt.Date, pt.ScreenTime, optional(pt.FocusScore, "%.2f"), optional(pt.Sleep, "%.1fh"))
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// HELPERS
// ─────────────────────────────────────────────────────────────────────────────

// toneTag renders a label with a severity marker, e.g. "[!] Needs Work".
func toneTag(t shared.Tone, label string) string {
	switch t {
	case shared.ToneDanger:
		return "[!!] " + label
	case shared.ToneWarning:
		return "[!] " + label
	default:
		return "[ok] " + label
	}
}

// progressBar draws percent (0..100) as a fixed-width bar.
func progressBar(percent float64) string {
	filled := shared.RoundInt(percent / 100 * barLength)
	filled = max(0, min(filled, barLength))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barLength-filled) + "]"
}

func optional(v *float64, format string) string {
	if v == nil {
		return NotAvailable
	}
	return fmt.Sprintf(format, *v)
}

// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/trajectory-hub/student-dashboard/internal/domain/shared"
	"github.com/trajectory-hub/student-dashboard/internal/domain/student"
	"github.com/trajectory-hub/student-dashboard/internal/domain/trajectory"
	"github.com/trajectory-hub/student-dashboard/internal/domain/wellbeing"
	"github.com/trajectory-hub/student-dashboard/internal/infrastructure/metrics"
	"github.com/trajectory-hub/student-dashboard/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOAD DASHBOARD QUERY
// Fetches the five dashboard resources in parallel and joins them
// all-or-nothing: one failure puts the whole dashboard into the error
// state and no partial data is ever exposed.
// ══════════════════════════════════════════════════════════════════════════════

// DefaultErrorMessage is shown when a failure carries no server detail.
const DefaultErrorMessage = "Failed to load dashboard data"

// Status is the lifecycle of the dashboard snapshot.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// Resource names one of the five parallel fetches.
type Resource string

const (
	ResourcePrediction Resource = "prediction"
	ResourceBehavioral Resource = "behavioral"
	ResourceInsights   Resource = "insights"
	ResourceSkills     Resource = "skills"
	ResourceProfile    Resource = "profile"
)

// ══════════════════════════════════════════════════════════════════════════════
// DEPENDENCIES (Interfaces)
// ══════════════════════════════════════════════════════════════════════════════

// DashboardGateway fetches the dashboard resources for the current session.
type DashboardGateway interface {
	GetPrediction(ctx context.Context) (trajectory.Prediction, error)
	GetBehavioral(ctx context.Context, days int) ([]student.BehavioralRecord, error)
	GetInsights(ctx context.Context) (trajectory.Insights, error)
	GetSkills(ctx context.Context) ([]student.Skill, error)
	GetProfile(ctx context.Context) (student.Profile, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// RESULT
// ══════════════════════════════════════════════════════════════════════════════

// Data is a complete, consistent set of dashboard resources plus the
// values derived from them.
type Data struct {
	Prediction trajectory.Prediction
	Behavioral []student.BehavioralRecord
	Insights   trajectory.Insights
	Skills     []student.Skill
	Profile    student.Profile

	Derived Derived
}

// Derived holds the pure derivations, computed once per successful load.
type Derived struct {
	Wellbeing       wellbeing.Metrics
	Tiers           wellbeing.Tiers
	Gaps            []wellbeing.Gap
	Trajectory      trajectory.View
	SkillSummary    wellbeing.SkillSummary
	Recommendations []trajectory.RecommendationView

	// Trend is Behavioral ordered oldest first.
	Trend []student.BehavioralRecord
}

// Derive computes every derivation of d's raw resources.
func Derive(d *Data) Derived {
	m := wellbeing.ComputeWellbeing(d.Behavioral)
	return Derived{
		Wellbeing:       m,
		Tiers:           wellbeing.Classify(m),
		Gaps:            wellbeing.AnalyzeGaps(d.Insights.Comparison),
		Trajectory:      trajectory.Derive(d.Prediction),
		SkillSummary:    wellbeing.SummarizeSkills(d.Skills),
		Recommendations: trajectory.RankRecommendations(d.Insights.Recommendations),
		Trend:           wellbeing.SortByDate(d.Behavioral),
	}
}

// Snapshot is the observable dashboard state.
type Snapshot struct {
	Status Status

	// Data is set only when Status is StatusReady, or while a reload of a
	// ready dashboard is in flight.
	Data *Data

	// Message is the user-facing error text when Status is StatusError.
	Message string

	// Err is the underlying failure when Status is StatusError.
	Err error

	// LoadedAt is when Data was fetched.
	LoadedAt time.Time
}

// Loading reports whether a load is in flight.
func (s Snapshot) Loading() bool { return s.Status == StatusLoading }

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// DashboardOption configures a Dashboard.
type DashboardOption func(*Dashboard)

// WithBehavioralDays sets the telemetry window. Defaults to 7.
func WithBehavioralDays(days int) DashboardOption {
	return func(d *Dashboard) {
		if days > 0 {
			d.days = days
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) DashboardOption {
	return func(d *Dashboard) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithAuthFailureHook registers fn to run when a load fails because the
// credential was rejected. The CLI uses it to log the user out.
func WithAuthFailureHook(fn func(context.Context)) DashboardOption {
	return func(d *Dashboard) { d.onAuthFailure = fn }
}

// Dashboard owns the dashboard snapshot and runs loads.
type Dashboard struct {
	gateway       DashboardGateway
	days          int
	logger        *zap.Logger
	onAuthFailure func(context.Context)
	now           func() time.Time

	mu   sync.RWMutex
	snap Snapshot
	seq  uint64
}

// NewDashboard creates a Dashboard in StatusIdle.
func NewDashboard(gateway DashboardGateway, opts ...DashboardOption) *Dashboard {
	d := &Dashboard{
		gateway: gateway,
		days:    7,
		logger:  logger.Nop(),
		now:     time.Now,
		snap:    Snapshot{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("dashboard"))
	return d
}

// Snapshot returns the last published state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snap
}

// Load fetches all five resources and publishes the result. It returns as
// soon as every fetch succeeded or the first one failed; fetches still in
// flight after a failure are left to finish and their results are
// dropped. There is no retry: calling Load again is the recovery path.
func (d *Dashboard) Load(ctx context.Context) Snapshot {
	start := d.now()

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.snap.Status = StatusLoading
	d.snap.Message = ""
	d.snap.Err = nil
	d.mu.Unlock()

	data, err := d.fetchAll(ctx)

	var next Snapshot
	if err != nil {
		next = Snapshot{Status: StatusError, Message: MessageFor(err), Err: err}
		d.logger.Warn("dashboard load failed", zap.Error(err), logger.Latency(time.Since(start)))
	} else {
		data.Derived = Derive(data)
		next = Snapshot{Status: StatusReady, Data: data, LoadedAt: d.now()}
		d.logger.Info("dashboard loaded",
			zap.Int("behavioral_days", len(data.Behavioral)),
			zap.Int("skills", len(data.Skills)),
			logger.Latency(time.Since(start)),
		)
	}
	metrics.RecordDashboardLoad(string(next.Status), time.Since(start))

	d.mu.Lock()
	// A newer Load owns the snapshot now; this result is stale.
	if seq == d.seq {
		d.snap = next
	}
	d.mu.Unlock()

	if err != nil && shared.IsAuthFailure(err) && d.onAuthFailure != nil {
		d.onAuthFailure(ctx)
	}
	return next
}

// fetchAll runs the five fetches concurrently and resolves exactly once:
// with the full set when all succeed, or with the first failure observed.
func (d *Dashboard) fetchAll(ctx context.Context) (*Data, error) {
	var (
		res   Data
		group errgroup.Group
		// first-error latch: only the first send lands.
		failed = make(chan error, 1)
	)

	run := func(r Resource, fetch func() error) {
		group.Go(func() error {
			if err := fetch(); err != nil {
				err = shared.WrapError("dashboard", "Load", shared.ErrPartialData,
					fmt.Sprintf("fetch %s", r), err)
				select {
				case failed <- err:
				default:
				}
				return err
			}
			return nil
		})
	}

	run(ResourcePrediction, func() (err error) {
		res.Prediction, err = d.gateway.GetPrediction(ctx)
		return err
	})
	run(ResourceBehavioral, func() (err error) {
		res.Behavioral, err = d.gateway.GetBehavioral(ctx, d.days)
		return err
	})
	run(ResourceInsights, func() (err error) {
		res.Insights, err = d.gateway.GetInsights(ctx)
		return err
	})
	run(ResourceSkills, func() (err error) {
		res.Skills, err = d.gateway.GetSkills(ctx)
		return err
	})
	run(ResourceProfile, func() (err error) {
		res.Profile, err = d.gateway.GetProfile(ctx)
		return err
	})

	done := make(chan struct{})
	go func() {
		_ = group.Wait()
		close(done)
	}()

	select {
	case err := <-failed:
		return nil, err
	case <-done:
	}

	// Everything finished; a failure may have landed in the same instant.
	select {
	case err := <-failed:
		return nil, err
	default:
	}
	return &res, nil
}

// MessageFor returns the user-facing text for a load failure: the
// backend's detail when it sent one, DefaultErrorMessage otherwise.
func MessageFor(err error) string {
	if detail := shared.DetailOf(err); detail != "" {
		return detail
	}
	return DefaultErrorMessage
}

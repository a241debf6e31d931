// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the report command.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/fieldpulse/internal/adapters/cache"
	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	"github.com/okian/fieldpulse/internal/domain/cashflow"
	"github.com/okian/fieldpulse/internal/domain/goals"
	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/performance"
	"github.com/okian/fieldpulse/internal/domain/pipeline"
	"github.com/okian/fieldpulse/pkg/logger"
	"github.com/okian/fieldpulse/pkg/metrics"
)

// Calculator names used for cache keys, metrics and logs.
const (
	CalcPipeline = "pipeline"
	CalcTeam     = "team"
	CalcCashFlow = "cashflow"
	CalcGoals    = "goals"
)

// Service runs the calculators over the current store contents.
type Service struct {
	store   repository.Store
	cache   cache.Cache
	clock   func() time.Time
	quality performance.QualitySignal

	// Defaults for requests that leave a parameter unset
	staleDays      int
	hoursPerJob    float64
	hoursPerWeek   float64
	horizon        int
	weeklyOutflow  float64
	openingBalance float64
	termsDays      int

	logger logger.Logger
}

// PipelineRequest selects a pipeline forecast. Zero fields use service defaults.
type PipelineRequest struct {
	Now                time.Time
	StaleDaysThreshold int
}

// TeamRequest selects a team performance run. Zero fields use service defaults.
type TeamRequest struct {
	Now                   time.Time
	EstimatedHoursPerJob  float64
	AvailableHoursPerWeek float64
}

// CashFlowRequest selects a cash flow forecast. Zero fields use service defaults.
type CashFlowRequest struct {
	Now     time.Time
	Horizon int
}

// GoalRequest selects the goal whose progress is reported. A zero Year or
// Period falls back to the period containing Now.
type GoalRequest struct {
	Now        time.Time
	GoalType   model.GoalType
	PeriodType model.PeriodType
	Year       int
	Period     int
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		clock:        time.Now,
		quality:      performance.ProjectCallbacks{},
		staleDays:    pipeline.DefaultStaleDaysThreshold,
		hoursPerJob:  performance.DefaultEstimatedHoursPerJob,
		hoursPerWeek: performance.DefaultAvailableHoursPerWeek,
		horizon:      cashflow.DefaultHorizon,
		termsDays:    cashflow.DefaultTermsDays,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("store")))
	}
	if s.cache == nil {
		s.cache = cache.NewResultCache()
	}
	return s
}

// Store exposes the underlying record store.
func (s *Service) Store() repository.Store { return s.store }

func (s *Service) now(t time.Time) time.Time {
	if t.IsZero() {
		return s.clock()
	}
	return t
}

// run returns the cached result for key or computes it from a fresh snapshot.
// The key revision is read before the snapshot is taken, so a stored result
// is only ever reused for the revision it was computed from. Cached values are
// cloned in and out so every caller owns what it gets back.
func run[T interface{ Clone() T }](ctx context.Context, s *Service, calc string, now time.Time, params string, compute func(repository.Snapshot) T) T {
	key := cache.Key{Calculator: calc, Revision: s.store.Revision(), Now: now, Params: params}
	if v, ok := s.cache.Get(ctx, key.Hash()); ok {
		if res, ok := v.(T); ok {
			metrics.RecordCacheLookup(calc, true)
			return res.Clone()
		}
	}
	metrics.RecordCacheLookup(calc, false)

	snap := s.store.Snapshot(ctx)
	start := time.Now()
	res := compute(snap)
	elapsed := time.Since(start)
	metrics.RecordCalculation(calc, float64(elapsed.Microseconds())/1000)

	if snap.Revision == key.Revision {
		s.cache.Put(ctx, key.Hash(), res.Clone())
	}
	s.logger.Debug(ctx, "calculation finished",
		logger.String("calculator", calc),
		logger.Uint64("revision", snap.Revision),
		logger.Duration("took", elapsed),
	)
	return res
}

// PipelineForecast computes the weighted sales pipeline.
func (s *Service) PipelineForecast(ctx context.Context, req PipelineRequest) pipeline.Result {
	now := s.now(req.Now)
	stale := req.StaleDaysThreshold
	if stale <= 0 {
		stale = s.staleDays
	}
	res := run(ctx, s, CalcPipeline, now, fmt.Sprintf("stale=%d", stale), func(snap repository.Snapshot) pipeline.Result {
		return pipeline.Forecast(snap.Projects, now, pipeline.WithStaleDaysThreshold(stale))
	})
	metrics.UpdatePipeline(res.WeightedForecast, len(res.StaleQuotes), res.CurrentWinRate)
	return res
}

// TeamPerformance classifies every technician with assigned work.
func (s *Service) TeamPerformance(ctx context.Context, req TeamRequest) performance.Result {
	now := s.now(req.Now)
	perJob, perWeek := req.EstimatedHoursPerJob, req.AvailableHoursPerWeek
	if perJob <= 0 {
		perJob = s.hoursPerJob
	}
	if perWeek <= 0 {
		perWeek = s.hoursPerWeek
	}
	params := fmt.Sprintf("job=%g|week=%g", perJob, perWeek)
	res := run(ctx, s, CalcTeam, now, params, func(snap repository.Snapshot) performance.Result {
		return performance.Evaluate(snap.Projects, snap.Technicians, now,
			performance.WithEstimatedHoursPerJob(perJob),
			performance.WithAvailableHoursPerWeek(perWeek),
			performance.WithQualitySignal(s.quality),
		)
	})
	metrics.UpdateTeam(len(res.Technicians), len(res.NeedsCoaching))
	return res
}

// CashFlow forecasts collections and reports DSO.
func (s *Service) CashFlow(ctx context.Context, req CashFlowRequest) cashflow.Result {
	now := s.now(req.Now)
	horizon := req.Horizon
	if horizon <= 0 {
		horizon = s.horizon
	}
	horizon = cashflow.SnapHorizon(horizon)
	params := fmt.Sprintf("h=%d|out=%g|open=%g|terms=%d", horizon, s.weeklyOutflow, s.openingBalance, s.termsDays)
	res := run(ctx, s, CalcCashFlow, now, params, func(snap repository.Snapshot) cashflow.Result {
		return cashflow.Forecast(snap.Projects, now,
			cashflow.WithHorizon(horizon),
			cashflow.WithWeeklyOutflow(s.weeklyOutflow),
			cashflow.WithOpeningBalance(s.openingBalance),
			cashflow.WithDefaultTerms(s.termsDays),
		)
	})
	metrics.UpdateCashFlow(res.TotalOutstandingAR, res.DSOMetrics.Current)
	return res
}

// GoalProgress reports progress for the goal matching req. Returns
// ErrGoalNotFound when no stored goal matches.
func (s *Service) GoalProgress(ctx context.Context, req GoalRequest) (*goals.Progress, error) {
	now := s.now(req.Now)
	year, period := req.Year, req.Period
	if year == 0 {
		year = now.Year()
	}
	if period == 0 {
		switch req.PeriodType {
		case model.PeriodMonthly:
			period = int(now.Month())
		case model.PeriodQuarterly:
			period = (int(now.Month())-1)/3 + 1
		}
	}
	params := fmt.Sprintf("%s|%s|%d|%d", req.GoalType, req.PeriodType, year, period)
	res := run(ctx, s, CalcGoals, now, params, func(snap repository.Snapshot) *goals.Progress {
		goal := goals.Find(snap.Goals, req.GoalType, req.PeriodType, year, period)
		if goal == nil {
			return nil
		}
		return goals.Track(goal, goals.Actual(goal, snap.Projects, now.Location()), now)
	})
	if res == nil {
		return nil, fmt.Errorf("%w: %s %s %d/%d", ErrGoalNotFound, req.GoalType, req.PeriodType, year, period)
	}
	return res, nil
}

// PutProject stores a project. Cached results are keyed by store revision,
// so nothing needs invalidating.
func (s *Service) PutProject(ctx context.Context, p model.Project) (model.Project, error) {
	stored, err := s.store.PutProject(ctx, p)
	if err != nil {
		s.logger.Warn(ctx, "project rejected", logger.String("id", p.ID), logger.Error(err))
		return model.Project{}, err
	}
	return stored, nil
}

// PutTechnician stores a technician.
func (s *Service) PutTechnician(ctx context.Context, t model.Technician) (model.Technician, error) {
	stored, err := s.store.PutTechnician(ctx, t)
	if err != nil {
		s.logger.Warn(ctx, "technician rejected", logger.String("id", t.ID), logger.Error(err))
		return model.Technician{}, err
	}
	return stored, nil
}

// PutGoal stores a business goal.
func (s *Service) PutGoal(ctx context.Context, g model.BusinessGoal) (model.BusinessGoal, error) {
	stored, err := s.store.PutGoal(ctx, g)
	if err != nil {
		s.logger.Warn(ctx, "goal rejected", logger.String("id", g.ID), logger.Error(err))
		return model.BusinessGoal{}, err
	}
	return stored, nil
}

// Load adds every record of snap on top of the current contents, in order.
// It stops at the first invalid record.
func (s *Service) Load(ctx context.Context, snap repository.Snapshot) error {
	for _, t := range snap.Technicians {
		if _, err := s.PutTechnician(ctx, t); err != nil {
			return fmt.Errorf("technician %q: %w", t.ID, err)
		}
	}
	for _, p := range snap.Projects {
		if _, err := s.PutProject(ctx, p); err != nil {
			return fmt.Errorf("project %q: %w", p.ID, err)
		}
	}
	for _, g := range snap.Goals {
		if _, err := s.PutGoal(ctx, g); err != nil {
			return fmt.Errorf("goal %q: %w", g.ID, err)
		}
	}
	counts := s.store.Count(ctx)
	s.logger.Info(ctx, "snapshot loaded",
		logger.Int("projects", counts.Projects),
		logger.Int("technicians", counts.Technicians),
		logger.Int("goals", counts.Goals),
	)
	return nil
}

// Projects lists stored projects in insertion order.
func (s *Service) Projects(ctx context.Context) []model.Project {
	return s.store.Snapshot(ctx).Projects
}

// Technicians lists stored technicians in insertion order.
func (s *Service) Technicians(ctx context.Context) []model.Technician {
	return s.store.Snapshot(ctx).Technicians
}

// Goals lists stored goals in insertion order.
func (s *Service) Goals(ctx context.Context) []model.BusinessGoal {
	return s.store.Snapshot(ctx).Goals
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]interface{} {
	counts := s.store.Count(ctx)
	return map[string]interface{}{
		"revision":    s.store.Revision(),
		"projects":    counts.Projects,
		"technicians": counts.Technicians,
		"goals":       counts.Goals,
		"cacheSize":   s.cache.Size(),
	}
}

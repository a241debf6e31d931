package service

import (
	"time"

	"github.com/okian/fieldpulse/internal/adapters/cache"
	repository "github.com/okian/fieldpulse/internal/adapters/repository"
	"github.com/okian/fieldpulse/internal/domain/performance"
	"github.com/okian/fieldpulse/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the record store. Defaults to an in-memory store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithCache sets the result cache. Defaults to a bounded in-memory cache.
func WithCache(c cache.Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithClock sets the time source used when a request carries no reference time.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQualitySignal sets the callback source used by the team classifier.
func WithQualitySignal(q performance.QualitySignal) Option {
	return func(s *Service) {
		if q != nil {
			s.quality = q
		}
	}
}

// WithStaleDaysThreshold sets the default stale-quote age.
func WithStaleDaysThreshold(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.staleDays = days
		}
	}
}

// WithHoursModel sets the default hours per job and hours available per week.
func WithHoursModel(perJob, perWeek float64) Option {
	return func(s *Service) {
		if perJob > 0 {
			s.hoursPerJob = perJob
		}
		if perWeek > 0 {
			s.hoursPerWeek = perWeek
		}
	}
}

// WithCashFlowDefaults sets the default horizon, weekly outflow, opening
// balance and payment terms of cash flow forecasts.
func WithCashFlowDefaults(horizon int, weeklyOutflow, openingBalance float64, termsDays int) Option {
	return func(s *Service) {
		if horizon > 0 {
			s.horizon = horizon
		}
		s.weeklyOutflow = weeklyOutflow
		s.openingBalance = openingBalance
		if termsDays > 0 {
			s.termsDays = termsDays
		}
	}
}

package performance

// Default classifier configuration constants.
const (
	DefaultEstimatedHoursPerJob  = 4.0
	DefaultAvailableHoursPerWeek = 40.0
)

type settings struct {
	estimatedHours float64
	availableHours float64
	quality        QualitySignal
}

// Option applies a configuration option to a classification run.
type Option func(*settings)

// WithEstimatedHoursPerJob sets the nominal hours a job should take.
func WithEstimatedHoursPerJob(hours float64) Option {
	return func(s *settings) {
		if hours > 0 {
			s.estimatedHours = hours
		}
	}
}

// WithAvailableHoursPerWeek sets the bookable hours of one technician.
func WithAvailableHoursPerWeek(hours float64) Option {
	return func(s *settings) {
		if hours > 0 {
			s.availableHours = hours
		}
	}
}

// WithQualitySignal replaces the source of callback counts.
func WithQualitySignal(q QualitySignal) Option {
	return func(s *settings) {
		if q != nil {
			s.quality = q
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		estimatedHours: DefaultEstimatedHoursPerJob,
		availableHours: DefaultAvailableHoursPerWeek,
		quality:        ProjectCallbacks{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

package pipeline

// Default forecast configuration constants.
const (
	DefaultStaleDaysThreshold = 14
	DefaultMaxStaleQuotes     = 10
)

type settings struct {
	staleDays int
	maxStale  int
}

// Option applies a configuration option to a forecast run.
type Option func(*settings)

// WithStaleDaysThreshold sets the age in days at which an open quote is stale.
func WithStaleDaysThreshold(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.staleDays = days
		}
	}
}

// WithMaxStaleQuotes caps the number of stale quotes returned.
func WithMaxStaleQuotes(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxStale = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		staleDays: DefaultStaleDaysThreshold,
		maxStale:  DefaultMaxStaleQuotes,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

package cashflow

// Default forecaster configuration constants.
const (
	DefaultHorizon       = 90
	DefaultTermsDays     = 30
	DefaultHistoryMonths = 6
)

// Horizons lists the supported projection lengths in days.
var Horizons = []int{30, 60, 90}

type settings struct {
	horizon        int
	weeklyOutflow  float64
	openingBalance float64
	termsDays      int
	historyMonths  int
}

// Option applies a configuration option to a forecast run.
type Option func(*settings)

// WithHorizon selects the projection length. Values snap to the nearest of
// 30, 60 or 90 days.
func WithHorizon(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.horizon = SnapHorizon(days)
		}
	}
}

// WithWeeklyOutflow sets the expected spend per week.
func WithWeeklyOutflow(amount float64) Option {
	return func(s *settings) {
		if amount >= 0 {
			s.weeklyOutflow = amount
		}
	}
}

// WithOpeningBalance sets the cash on hand the cumulative projection starts from.
func WithOpeningBalance(amount float64) Option {
	return func(s *settings) {
		s.openingBalance = amount
	}
}

// WithDefaultTerms sets the payment terms assumed when no history exists.
func WithDefaultTerms(days int) Option {
	return func(s *settings) {
		if days > 0 {
			s.termsDays = days
		}
	}
}

// WithHistoryMonths sets how many month ends feed the DSO history.
func WithHistoryMonths(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.historyMonths = n
		}
	}
}

// SnapHorizon maps days to the closest supported horizon.
func SnapHorizon(days int) int {
	best := Horizons[0]
	for _, h := range Horizons {
		if abs(days-h) < abs(days-best) {
			best = h
		}
	}
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func newSettings(opts []Option) settings {
	s := settings{
		horizon:       DefaultHorizon,
		termsDays:     DefaultTermsDays,
		historyMonths: DefaultHistoryMonths,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

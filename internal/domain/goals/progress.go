// Package goals compares business goal targets against period actuals.
package goals

import (
	"math"
	"time"

	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/numeric"
)

// onTrackPace is the share of the linear pace that still counts as on track.
const onTrackPace = 0.8

// Nominal period lengths in days. These are not calendar lengths.
var nominalDays = map[model.PeriodType]int{
	model.PeriodMonthly:   30,
	model.PeriodQuarterly: 90,
	model.PeriodYearly:    365,
}

// Progress is the derived state of one goal.
type Progress struct {
	Goal          model.BusinessGoal `json:"goal"`
	CurrentValue  float64            `json:"currentValue"`
	Progress      int                `json:"progress"`
	DaysRemaining int                `json:"daysRemaining"`
	OnTrack       bool               `json:"onTrack"`
}

// Track returns the progress of goal given the period's current value, or nil
// when there is no goal.
func Track(goal *model.BusinessGoal, current float64, now time.Time) *Progress {
	if goal == nil {
		return nil
	}

	progress := 0
	if goal.TargetValue != 0 {
		progress = numeric.RoundInt(current / goal.TargetValue * 100)
	}

	end := PeriodEnd(goal, now.Location())
	remaining := int(math.Ceil(float64(end.Sub(now)) / float64(model.Day)))
	if remaining < 0 {
		remaining = 0
	}

	total := nominalDays[goal.PeriodType]
	elapsed := total - remaining
	expected := numeric.Percent(float64(elapsed), float64(total))

	return &Progress{
		Goal:          *goal,
		CurrentValue:  current,
		Progress:      progress,
		DaysRemaining: remaining,
		OnTrack:       float64(progress) >= expected*onTrackPace,
	}
}

// PeriodStart returns midnight on the first day of the goal's period.
func PeriodStart(goal *model.BusinessGoal, loc *time.Location) time.Time {
	switch goal.PeriodType {
	case model.PeriodMonthly:
		return time.Date(goal.Year, time.Month(goal.Month), 1, 0, 0, 0, 0, loc)
	case model.PeriodQuarterly:
		return time.Date(goal.Year, time.Month((goal.Quarter-1)*3+1), 1, 0, 0, 0, 0, loc)
	}
	return time.Date(goal.Year, time.January, 1, 0, 0, 0, 0, loc)
}

// PeriodEnd returns midnight at the start of the last calendar day of the
// goal's period.
func PeriodEnd(goal *model.BusinessGoal, loc *time.Location) time.Time {
	switch goal.PeriodType {
	case model.PeriodMonthly:
		return time.Date(goal.Year, time.Month(goal.Month)+1, 0, 0, 0, 0, 0, loc)
	case model.PeriodQuarterly:
		return time.Date(goal.Year, time.Month(goal.Quarter*3)+1, 0, 0, 0, 0, 0, loc)
	}
	return time.Date(goal.Year, time.December, 31, 0, 0, 0, 0, loc)
}

// Clone returns a copy of p, or nil for nil.
func (p *Progress) Clone() *Progress {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}

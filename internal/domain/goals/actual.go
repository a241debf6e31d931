package goals

import (
	"time"

	"github.com/okian/fieldpulse/internal/domain/model"
)

const unknownClient = "Unknown"

// Find returns the first goal matching the type and period, or nil.
// period is the month for monthly goals, the quarter for quarterly goals and
// ignored for yearly goals.
func Find(goals []model.BusinessGoal, goalType model.GoalType, periodType model.PeriodType, year, period int) *model.BusinessGoal {
	for i := range goals {
		g := &goals[i]
		if g.GoalType != goalType || g.PeriodType != periodType || g.Year != year {
			continue
		}
		switch periodType {
		case model.PeriodMonthly:
			if g.Month != period {
				continue
			}
		case model.PeriodQuarterly:
			if g.Quarter != period {
				continue
			}
		}
		found := *g
		return &found
	}
	return nil
}

// Actual computes the running value of a goal's metric from project records.
func Actual(goal *model.BusinessGoal, projects []model.Project, loc *time.Location) float64 {
	if goal == nil {
		return 0
	}
	from := PeriodStart(goal, loc)
	var to time.Time
	switch goal.PeriodType {
	case model.PeriodMonthly:
		to = from.AddDate(0, 1, 0)
	case model.PeriodQuarterly:
		to = from.AddDate(0, 3, 0)
	default:
		to = from.AddDate(1, 0, 0)
	}
	within := func(t time.Time) bool { return !t.Before(from) && t.Before(to) }

	switch goal.GoalType {
	case model.GoalRevenue, model.GoalProjectsCompleted:
		var revenue, count float64
		for i := range projects {
			p := &projects[i]
			if p.Status != model.StatusCompleted || !within(p.FinishedAt()) {
				continue
			}
			revenue += p.QuoteValue()
			count++
		}
		if goal.GoalType == model.GoalRevenue {
			return revenue
		}
		return count
	case model.GoalNewClients:
		first := make(map[string]time.Time)
		for i := range projects {
			p := &projects[i]
			key := p.ClientKey()
			if key == unknownClient {
				continue
			}
			if seen, ok := first[key]; !ok || p.Date.Before(seen) {
				first[key] = p.Date
			}
		}
		n := 0
		for _, t := range first {
			if within(t) {
				n++
			}
		}
		return float64(n)
	}
	return 0
}

// Package pipeline turns open projects into a stage-weighted revenue forecast,
// stale-quote alerts and a win-rate trend.
package pipeline

import (
	"slices"
	"sort"
	"time"

	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/numeric"
)

// Probability that a project in a stage closes.
var stageProbability = map[model.Status]float64{
	model.StatusDraft:     0.10,
	model.StatusQuoted:    0.30,
	model.StatusApproved:  0.80,
	model.StatusScheduled: 0.95,
	model.StatusCompleted: 1.00,
}

var stageLabel = map[model.Status]string{
	model.StatusDraft:     "Draft",
	model.StatusQuoted:    "Quoted",
	model.StatusApproved:  "Approved",
	model.StatusScheduled: "Scheduled",
}

// Near-term forecast weights.
const (
	approvedShare30 = 0.70
	quotedShare60   = 0.50
	winRateWindow   = 30 * model.Day
)

// Confidence labels attached to forecast buckets.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Stage aggregates the projects sitting in one pipeline status.
type Stage struct {
	Status        model.Status `json:"status"`
	Label         string       `json:"label"`
	Count         int          `json:"count"`
	Value         float64      `json:"value"`
	Probability   float64      `json:"probability"`
	WeightedValue float64      `json:"weightedValue"`
}

// StaleQuote is an open draft or quote that has waited too long.
type StaleQuote struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ClientName string       `json:"clientName"`
	Value      float64      `json:"value"`
	DaysOld    int          `json:"daysOld"`
	Status     model.Status `json:"status"`
}

// Period is a near-term revenue bucket.
type Period struct {
	Label      string  `json:"label"`
	Days       int     `json:"days"`
	Value      float64 `json:"value"`
	Confidence string  `json:"confidence"`
}

// Result is the full pipeline view.
type Result struct {
	Stages                []Stage      `json:"stages"`
	TotalPipelineValue    float64      `json:"totalPipelineValue"`
	WeightedForecast      float64      `json:"weightedForecast"`
	AverageDealSize       float64      `json:"averageDealSize"`
	AverageDaysInPipeline int          `json:"averageDaysInPipeline"`
	StaleQuotes           []StaleQuote `json:"staleQuotes"`
	Forecasts             []Period     `json:"forecasts"`
	WinRateTrend          int          `json:"winRateTrend"`
	CurrentWinRate        int          `json:"currentWinRate"`
}

// Probability returns the close probability used for a status.
func Probability(s model.Status) float64 {
	return stageProbability[s]
}

// Forecast computes the pipeline view of projects as of now.
func Forecast(projects []model.Project, now time.Time, opts ...Option) Result {
	cfg := newSettings(opts)

	stages := make([]Stage, len(model.OpenStatuses))
	index := make(map[model.Status]int, len(model.OpenStatuses))
	for i, st := range model.OpenStatuses {
		stages[i] = Stage{Status: st, Label: stageLabel[st], Probability: stageProbability[st]}
		index[st] = i
	}

	var quotedCount, totalDays int
	for i := range projects {
		p := &projects[i]
		idx, open := index[p.Status]
		if !open {
			continue
		}
		stages[idx].Count++
		if v, ok := p.QuoteTotal(); ok {
			stages[idx].Value += v
			quotedCount++
			totalDays += model.DaysBetween(p.Date, now)
		}
	}

	res := Result{Stages: stages, StaleQuotes: []StaleQuote{}}
	for i := range stages {
		stages[i].WeightedValue = stages[i].Value * stages[i].Probability
		res.TotalPipelineValue += stages[i].Value
		res.WeightedForecast += stages[i].WeightedValue
	}
	res.AverageDealSize = numeric.Div(res.TotalPipelineValue, float64(quotedCount))
	res.AverageDaysInPipeline = numeric.RoundInt(numeric.Div(float64(totalDays), float64(quotedCount)))

	res.StaleQuotes = staleQuotes(projects, now, cfg)
	res.CurrentWinRate, res.WinRateTrend = winRates(projects, now)
	res.Forecasts = nearTerm(stages, index, res.WeightedForecast)
	return res
}

func staleQuotes(projects []model.Project, now time.Time, cfg settings) []StaleQuote {
	out := []StaleQuote{}
	for i := range projects {
		p := &projects[i]
		if p.Status != model.StatusDraft && p.Status != model.StatusQuoted {
			continue
		}
		age := model.DaysBetween(p.Date, now)
		if age < cfg.staleDays {
			continue
		}
		out = append(out, StaleQuote{
			ID:         p.ID,
			Name:       p.Name,
			ClientName: p.DisplayClient(),
			Value:      p.QuoteValue(),
			DaysOld:    age,
			Status:     p.Status,
		})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].DaysOld > out[b].DaysOld })
	if len(out) > cfg.maxStale {
		out = out[:cfg.maxStale]
	}
	return out
}

// winRate is won / decided * 100 where drafts are not yet decided.
func winRate(projects []model.Project, keep func(*model.Project) bool) int {
	var won, decided int
	for i := range projects {
		p := &projects[i]
		if !keep(p) || p.Status == model.StatusDraft {
			continue
		}
		decided++
		if p.Status.Won() {
			won++
		}
	}
	return numeric.RoundInt(numeric.Percent(float64(won), float64(decided)))
}

func winRates(projects []model.Project, now time.Time) (current, trend int) {
	recentFrom := now.Add(-winRateWindow)
	previousFrom := now.Add(-2 * winRateWindow)

	current = winRate(projects, func(*model.Project) bool { return true })
	recent := winRate(projects, func(p *model.Project) bool { return !p.Date.Before(recentFrom) })
	previous := winRate(projects, func(p *model.Project) bool {
		return !p.Date.Before(previousFrom) && p.Date.Before(recentFrom)
	})
	return current, numeric.Change(float64(recent), float64(previous))
}

func nearTerm(stages []Stage, index map[model.Status]int, weighted float64) []Period {
	scheduled := stages[index[model.StatusScheduled]]
	approved := stages[index[model.StatusApproved]]
	quoted := stages[index[model.StatusQuoted]]

	return []Period{
		{
			Label:      "Next 30 days",
			Days:       30,
			Value:      scheduled.Value + approved.WeightedValue*approvedShare30,
			Confidence: ConfidenceHigh,
		},
		{
			Label:      "Next 60 days",
			Days:       60,
			Value:      scheduled.Value + approved.Value + quoted.WeightedValue*quotedShare60,
			Confidence: ConfidenceMedium,
		},
		{
			Label:      "Next 90 days",
			Days:       90,
			Value:      weighted,
			Confidence: ConfidenceLow,
		},
	}
}

// Clone returns a copy that shares no slices with r.
func (r Result) Clone() Result {
	out := r
	out.Stages = slices.Clone(r.Stages)
	out.StaleQuotes = slices.Clone(r.StaleQuotes)
	out.Forecasts = slices.Clone(r.Forecasts)
	return out
}

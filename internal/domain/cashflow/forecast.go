// Package cashflow projects receivable collections week by week and tracks
// days sales outstanding (DSO).
package cashflow

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/numeric"
)

// Confidence labels for weekly projections.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// DSO trend labels.
const (
	TrendImproving = "improving"
	TrendWorsening = "worsening"
	TrendStable    = "stable"
)

const (
	daysPerWeek      = 7
	dsoWindowDays    = 90
	highConfidence   = 30
	mediumConfidence = 60
	stableBandDays   = 2.0
	stableBandShare  = 0.05
)

// Collection is the amount expected to arrive within Days of now.
type Collection struct {
	Days   int     `json:"days"`
	Amount float64 `json:"amount"`
}

// WeeklyProjection is the expected cash movement of one week.
type WeeklyProjection struct {
	Week       int       `json:"week"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Inflow     float64   `json:"inflow"`
	Outflow    float64   `json:"outflow"`
	Net        float64   `json:"net"`
	Cumulative float64   `json:"cumulative"`
	Confidence string    `json:"confidence"`
}

// DSOPoint is the DSO measured at a month end.
type DSOPoint struct {
	Month string  `json:"month"`
	DSO   float64 `json:"dso"`
}

// DSOMetrics summarises collection speed.
type DSOMetrics struct {
	Current float64    `json:"current"`
	Average float64    `json:"average"`
	History []DSOPoint `json:"history"`
	Trend   string     `json:"trend"`
}

// PaymentPatterns describes how quickly settled invoices were paid.
type PaymentPatterns struct {
	PaidInvoices int     `json:"paidInvoices"`
	Within30     int     `json:"within30"`
	Days30To60   int     `json:"days30To60"`
	Days60To90   int     `json:"days60To90"`
	Over90       int     `json:"over90"`
	AverageDelay float64 `json:"averageDelay"`
	MedianDelay  float64 `json:"medianDelay"`
}

// Result is the cash flow view.
type Result struct {
	Horizon              int                `json:"horizon"`
	TotalOutstandingAR   float64            `json:"totalOutstandingAR"`
	ProjectedCollections []Collection       `json:"projectedCollections"`
	Projections          []WeeklyProjection `json:"projections"`
	DSOMetrics           DSOMetrics         `json:"dsoMetrics"`
	PaymentPatterns      PaymentPatterns    `json:"paymentPatterns"`
}

// expected is an open invoice's probable collection.
type expected struct {
	offset time.Duration
	amount float64
}

// Forecast projects collections from the invoices carried on projects.
func Forecast(projects []model.Project, now time.Time, opts ...Option) Result {
	cfg := newSettings(opts)

	invoices := make([]*model.Invoice, 0)
	for i := range projects {
		if inv := projects[i].Invoice; inv != nil {
			invoices = append(invoices, inv)
		}
	}

	res := Result{Horizon: cfg.horizon}
	res.PaymentPatterns = patterns(invoices, now)

	open := make([]expected, 0)
	for _, inv := range invoices {
		if inv.IssuedDate.After(now) {
			continue
		}
		left := inv.OutstandingAt(now)
		if left <= 0 {
			continue
		}
		res.TotalOutstandingAR += left
		open = append(open, expected{
			offset: expectedDate(inv, res.PaymentPatterns, cfg, now).Sub(now),
			amount: left * collectionProbability(model.DaysBetween(inv.IssuedDate, now)),
		})
	}

	res.ProjectedCollections = make([]Collection, 0, len(Horizons))
	for _, h := range Horizons {
		c := Collection{Days: h}
		limit := time.Duration(h) * model.Day
		for _, e := range open {
			if e.offset <= limit {
				c.Amount += e.amount
			}
		}
		res.ProjectedCollections = append(res.ProjectedCollections, c)
	}

	res.Projections = weekly(open, now, cfg)
	res.DSOMetrics = dso(invoices, now, cfg)
	return res
}

func expectedDate(inv *model.Invoice, p PaymentPatterns, cfg settings, now time.Time) time.Time {
	var at time.Time
	switch {
	case p.PaidInvoices > 0:
		at = inv.IssuedDate.Add(time.Duration(p.AverageDelay * float64(model.Day)))
	case inv.DueDate != nil:
		at = *inv.DueDate
	default:
		at = inv.IssuedDate.Add(time.Duration(cfg.termsDays) * model.Day)
	}
	if at.Before(now) {
		return now
	}
	return at
}

// collectionProbability decays with the age of the receivable.
func collectionProbability(ageDays int) float64 {
	switch {
	case ageDays <= 30:
		return 0.95
	case ageDays <= 60:
		return 0.85
	case ageDays <= 90:
		return 0.70
	}
	return 0.50
}

func weekly(open []expected, now time.Time, cfg settings) []WeeklyProjection {
	weeks := int(math.Ceil(float64(cfg.horizon) / daysPerWeek))
	out := make([]WeeklyProjection, weeks)
	running := cfg.openingBalance
	for w := 0; w < weeks; w++ {
		from := time.Duration(w*daysPerWeek) * model.Day
		to := from + daysPerWeek*model.Day

		inflow := 0.0
		for _, e := range open {
			if e.offset >= from && e.offset < to {
				inflow += e.amount
			}
		}
		net := inflow - cfg.weeklyOutflow
		running += net
		out[w] = WeeklyProjection{
			Week:       w + 1,
			Start:      now.Add(from),
			End:        now.Add(to),
			Inflow:     inflow,
			Outflow:    cfg.weeklyOutflow,
			Net:        net,
			Cumulative: running,
			Confidence: weekConfidence(w * daysPerWeek),
		}
	}
	return out
}

func weekConfidence(offsetDays int) string {
	switch {
	case offsetDays < highConfidence:
		return ConfidenceHigh
	case offsetDays < mediumConfidence:
		return ConfidenceMedium
	}
	return ConfidenceLow
}

// patterns only sees payments made up to now.
func patterns(invoices []*model.Invoice, now time.Time) PaymentPatterns {
	delays := make([]float64, 0, len(invoices))
	var within30, to60, to90, over90 int
	for _, inv := range invoices {
		paid, ok := inv.PaidDate(now)
		if !ok {
			continue
		}
		d := model.DaysBetween(inv.IssuedDate, paid)
		if d < 0 {
			d = 0
		}
		delays = append(delays, float64(d))
		switch {
		case d <= 30:
			within30++
		case d <= 60:
			to60++
		case d <= 90:
			to90++
		default:
			over90++
		}
	}

	n := float64(len(delays))
	p := PaymentPatterns{
		PaidInvoices: len(delays),
		Within30:     numeric.RoundInt(numeric.Percent(float64(within30), n)),
		Days30To60:   numeric.RoundInt(numeric.Percent(float64(to60), n)),
		Days60To90:   numeric.RoundInt(numeric.Percent(float64(to90), n)),
		Over90:       numeric.RoundInt(numeric.Percent(float64(over90), n)),
	}
	if len(delays) == 0 {
		return p
	}

	sum := 0.0
	for _, d := range delays {
		sum += d
	}
	p.AverageDelay = numeric.Round1(sum / n)

	sort.Float64s(delays)
	mid := len(delays) / 2
	if len(delays)%2 == 0 {
		p.MedianDelay = numeric.Round1((delays[mid-1] + delays[mid]) / 2)
	} else {
		p.MedianDelay = delays[mid]
	}
	return p
}

// dsoAt is receivables at the given instant over the trailing window's sales,
// scaled to the window length.
func dsoAt(invoices []*model.Invoice, at time.Time) float64 {
	windowStart := at.Add(-dsoWindowDays * model.Day)
	var ar, sales float64
	for _, inv := range invoices {
		ar += inv.OutstandingAt(at)
		if inv.IssuedDate.After(windowStart) && !inv.IssuedDate.After(at) {
			sales += inv.Amount
		}
	}
	return numeric.Round1(numeric.Div(ar, sales) * dsoWindowDays)
}

func dso(invoices []*model.Invoice, now time.Time, cfg settings) DSOMetrics {
	m := DSOMetrics{
		Current: dsoAt(invoices, now),
		History: make([]DSOPoint, 0, cfg.historyMonths),
	}

	sum := 0.0
	for k := cfg.historyMonths; k >= 1; k-- {
		monthEnd := time.Date(now.Year(), now.Month()-time.Month(k)+1, 1, 0, 0, 0, 0, now.Location()).Add(-time.Second)
		v := dsoAt(invoices, monthEnd)
		sum += v
		m.History = append(m.History, DSOPoint{Month: monthEnd.Format("2006-01"), DSO: v})
	}
	m.Average = numeric.Round1(numeric.Div(sum, float64(len(m.History))))

	m.Trend = Trend(m.Current, m.Average)
	return m
}

// Trend compares the current DSO with its trailing average. Differences
// within max(2 days, 5% of the average) are stable.
func Trend(current, average float64) string {
	band := math.Max(stableBandDays, average*stableBandShare)
	switch {
	case current < average-band:
		return TrendImproving
	case current > average+band:
		return TrendWorsening
	}
	return TrendStable
}

// Clone returns a copy that shares no slices with r.
func (r Result) Clone() Result {
	out := r
	out.ProjectedCollections = slices.Clone(r.ProjectedCollections)
	out.Projections = slices.Clone(r.Projections)
	out.DSOMetrics.History = slices.Clone(r.DSOMetrics.History)
	return out
}

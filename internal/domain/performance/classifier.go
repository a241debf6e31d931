// Package performance scores technicians on efficiency, quality, speed and
// utilization and places each one in a performance quadrant.
package performance

import (
	"math"
	"slices"
	"sort"
	"time"

	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/internal/domain/numeric"
)

// Quadrant is the label derived from efficiency and quality.
type Quadrant string

const (
	QuadrantStar          Quadrant = "star"
	QuadrantWorkhorse     Quadrant = "workhorse"
	QuadrantPerfectionist Quadrant = "perfectionist"
	QuadrantDeveloping    Quadrant = "developing"
)

// Badge names.
const (
	BadgeTopRevenue      = "Top Revenue"
	BadgeMostEfficient   = "Most Efficient"
	BadgeQualityChampion = "Quality Champion"
	BadgeMostImproved    = "Most Improved"
	BadgeHighVolume      = "High Volume"
)

// Scoring thresholds.
const (
	quadrantThreshold   = 70
	coachingThreshold   = 50
	callbackPenalty     = 10
	qualityChampion     = 95
	mostImprovedTrend   = 20
	highVolumeJobs      = 10
	weeksPerWindow      = 4
	scoreCeiling        = 100
	performanceWindow   = 30 * model.Day
	previousWindowStart = 2 * performanceWindow
)

// Technician holds the derived scores of one technician.
type Technician struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Role          string   `json:"role,omitempty"`
	Rostered      bool     `json:"rostered"`
	JobsCompleted int      `json:"jobsCompleted"`
	Revenue       float64  `json:"revenue"`
	Efficiency    int      `json:"efficiency"`
	AvgJobTime    float64  `json:"avgJobTime"`
	Quality       int      `json:"quality"`
	Callbacks     int      `json:"callbacks"`
	Speed         float64  `json:"speed"`
	Utilization   int      `json:"utilization"`
	Trend         int      `json:"trend"`
	Quadrant      Quadrant `json:"quadrant"`
	Badges        []string `json:"badges"`
}

// TeamAverages are means over every scored technician.
type TeamAverages struct {
	Efficiency  int     `json:"efficiency"`
	Quality     int     `json:"quality"`
	Revenue     float64 `json:"revenue"`
	Utilization int     `json:"utilization"`
}

// QuadrantCounts tallies technicians per quadrant.
type QuadrantCounts struct {
	Star          int `json:"star"`
	Workhorse     int `json:"workhorse"`
	Perfectionist int `json:"perfectionist"`
	Developing    int `json:"developing"`
}

// Result is the team performance view.
type Result struct {
	Technicians    []Technician   `json:"technicians"`
	TeamAverages   TeamAverages   `json:"teamAverages"`
	TopPerformer   *Technician    `json:"topPerformer"`
	NeedsCoaching  []Technician   `json:"needsCoaching"`
	QuadrantCounts QuadrantCounts `json:"quadrantCounts"`
}

// Classify places a quadrant label on an efficiency and quality pair.
func Classify(efficiency, quality int) Quadrant {
	switch {
	case efficiency >= quadrantThreshold && quality >= quadrantThreshold:
		return QuadrantStar
	case efficiency >= quadrantThreshold:
		return QuadrantWorkhorse
	case quality >= quadrantThreshold:
		return QuadrantPerfectionist
	}
	return QuadrantDeveloping
}

// Evaluate scores every technician that is on the roster or has a job.
func Evaluate(projects []model.Project, technicians []model.Technician, now time.Time, opts ...Option) Result {
	cfg := newSettings(opts)

	byTech := make(map[string][]model.Project)
	for i := range projects {
		if id := projects[i].AssignedTechnicianID; id != "" {
			byTech[id] = append(byTech[id], projects[i])
		}
	}

	scored := make([]Technician, 0, len(technicians)+len(byTech))
	seen := make(map[string]bool, len(technicians))
	for i := range technicians {
		t := &technicians[i]
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		row := score(t.ID, byTech[t.ID], now, cfg)
		row.Name = t.Name
		row.Role = string(t.Role)
		row.Rostered = true
		scored = append(scored, row)
	}

	ghosts := make([]string, 0)
	for id := range byTech {
		if !seen[id] {
			ghosts = append(ghosts, id)
		}
	}
	sort.Strings(ghosts)
	for _, id := range ghosts {
		row := score(id, byTech[id], now, cfg)
		row.Name = model.PlaceholderName(id)
		scored = append(scored, row)
	}

	sort.SliceStable(scored, func(a, b int) bool { return scored[a].Revenue > scored[b].Revenue })
	awardBadges(scored)
	return summarize(scored)
}

func score(id string, jobs []model.Project, now time.Time, cfg settings) Technician {
	recentFrom := now.Add(-performanceWindow)
	previousFrom := now.Add(-previousWindowStart)

	completed := make([]model.Project, 0, len(jobs))
	var scheduled, recent, previous int
	var revenue, actualHours float64
	for i := range jobs {
		p := &jobs[i]
		switch p.Status {
		case model.StatusScheduled:
			scheduled++
		case model.StatusCompleted:
			completed = append(completed, *p)
			revenue += p.QuoteValue()
			if p.ActualHours != nil {
				actualHours += *p.ActualHours
			} else {
				actualHours += cfg.estimatedHours
			}
			done := p.FinishedAt()
			switch {
			case !done.Before(recentFrom):
				recent++
			case !done.Before(previousFrom):
				previous++
			}
		}
	}

	t := Technician{
		ID:            id,
		JobsCompleted: len(completed),
		Revenue:       revenue,
		Efficiency:    scoreCeiling,
		Badges:        []string{},
	}
	if actualHours > 0 {
		estimated := float64(len(completed)) * cfg.estimatedHours
		t.Efficiency = int(math.Min(scoreCeiling, numeric.Round(estimated/actualHours*100)))
	}
	t.AvgJobTime = numeric.Round1(numeric.Div(actualHours, float64(len(completed))))

	t.Callbacks = cfg.quality.Callbacks(id, completed)
	t.Quality = int(math.Max(0, float64(scoreCeiling-t.Callbacks*callbackPenalty)))

	weeklyRate := float64(recent) / weeksPerWindow
	t.Speed = numeric.Round1(weeklyRate)

	booked := (float64(scheduled) + weeklyRate) * cfg.estimatedHours
	t.Utilization = int(math.Min(scoreCeiling, numeric.Round(booked/cfg.availableHours*100)))

	t.Trend = numeric.Change(float64(recent), float64(previous))
	t.Quadrant = Classify(t.Efficiency, t.Quality)
	return t
}

// awardBadges expects rows sorted by revenue, highest first.
func awardBadges(rows []Technician) {
	if len(rows) == 0 {
		return
	}
	topRevenue := rows[0].Revenue
	topEfficiency := 0
	for i := range rows {
		if rows[i].Efficiency > topEfficiency {
			topEfficiency = rows[i].Efficiency
		}
	}
	for i := range rows {
		r := &rows[i]
		if r.Revenue > 0 && r.Revenue == topRevenue {
			r.Badges = append(r.Badges, BadgeTopRevenue)
		}
		if r.Efficiency > 0 && r.Efficiency == topEfficiency {
			r.Badges = append(r.Badges, BadgeMostEfficient)
		}
		if r.Quality >= qualityChampion {
			r.Badges = append(r.Badges, BadgeQualityChampion)
		}
		if r.Trend >= mostImprovedTrend {
			r.Badges = append(r.Badges, BadgeMostImproved)
		}
		if r.JobsCompleted >= highVolumeJobs {
			r.Badges = append(r.Badges, BadgeHighVolume)
		}
	}
}

func summarize(rows []Technician) Result {
	res := Result{Technicians: rows, NeedsCoaching: []Technician{}}
	if len(rows) == 0 {
		return res
	}

	var eff, qual, util int
	var revenue float64
	for i := range rows {
		r := rows[i]
		eff += r.Efficiency
		qual += r.Quality
		util += r.Utilization
		revenue += r.Revenue

		switch r.Quadrant {
		case QuadrantStar:
			res.QuadrantCounts.Star++
		case QuadrantWorkhorse:
			res.QuadrantCounts.Workhorse++
		case QuadrantPerfectionist:
			res.QuadrantCounts.Perfectionist++
		case QuadrantDeveloping:
			res.QuadrantCounts.Developing++
		}
		if r.Quadrant == QuadrantDeveloping || r.Efficiency < coachingThreshold || r.Quality < coachingThreshold {
			res.NeedsCoaching = append(res.NeedsCoaching, r.Clone())
		}
	}

	n := float64(len(rows))
	res.TeamAverages = TeamAverages{
		Efficiency:  numeric.RoundInt(float64(eff) / n),
		Quality:     numeric.RoundInt(float64(qual) / n),
		Revenue:     revenue / n,
		Utilization: numeric.RoundInt(float64(util) / n),
	}
	top := rows[0].Clone()
	res.TopPerformer = &top
	return res
}

// Clone returns a copy of t with its own badge list.
func (t Technician) Clone() Technician {
	t.Badges = slices.Clone(t.Badges)
	return t
}

// Clone returns a copy that shares no slices or pointers with r.
func (r Result) Clone() Result {
	out := r
	out.Technicians = cloneTechnicians(r.Technicians)
	out.NeedsCoaching = cloneTechnicians(r.NeedsCoaching)
	if r.TopPerformer != nil {
		top := r.TopPerformer.Clone()
		out.TopPerformer = &top
	}
	return out
}

func cloneTechnicians(in []Technician) []Technician {
	if in == nil {
		return nil
	}
	out := make([]Technician, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}

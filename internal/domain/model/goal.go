package model

// GoalType is the metric a business goal measures.
type GoalType string

const (
	GoalRevenue           GoalType = "revenue"
	GoalProjectsCompleted GoalType = "projects_completed"
	GoalNewClients        GoalType = "new_clients"
)

// Valid reports whether t is a known goal type.
func (t GoalType) Valid() bool {
	switch t {
	case GoalRevenue, GoalProjectsCompleted, GoalNewClients:
		return true
	}
	return false
}

// PeriodType is the length of a goal's period.
type PeriodType string

const (
	PeriodMonthly   PeriodType = "monthly"
	PeriodQuarterly PeriodType = "quarterly"
	PeriodYearly    PeriodType = "yearly"
)

// Valid reports whether p is a known period type.
func (p PeriodType) Valid() bool {
	switch p {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}

// BusinessGoal is a target value for one period.
type BusinessGoal struct {
	ID          string     `json:"id"`
	GoalType    GoalType   `json:"goalType"`
	PeriodType  PeriodType `json:"periodType"`
	TargetValue float64    `json:"targetValue"`
	Year        int        `json:"year"`
	// Month is 1-12 for monthly goals.
	Month int `json:"month,omitempty"`
	// Quarter is 1-4 for quarterly goals.
	Quarter int `json:"quarter,omitempty"`
}

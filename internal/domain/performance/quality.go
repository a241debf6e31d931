package performance

import "github.com/okian/fieldpulse/internal/domain/model"

// QualitySignal supplies the number of callbacks (return visits to fix work)
// charged to a technician for their completed jobs.
type QualitySignal interface {
	Callbacks(technicianID string, completed []model.Project) int
}

// ProjectCallbacks reads the callback count recorded on each project.
type ProjectCallbacks struct{}

// Callbacks implements QualitySignal.
func (ProjectCallbacks) Callbacks(_ string, completed []model.Project) int {
	n := 0
	for i := range completed {
		n += completed[i].Callbacks
	}
	return n
}

// NoCallbacks reports a clean record for everyone.
type NoCallbacks struct{}

// Callbacks implements QualitySignal.
func (NoCallbacks) Callbacks(string, []model.Project) int { return 0 }

// CallbackTable serves counts from an external rework log keyed by technician id.
type CallbackTable map[string]int

// Callbacks implements QualitySignal.
func (t CallbackTable) Callbacks(technicianID string, _ []model.Project) int {
	return t[technicianID]
}

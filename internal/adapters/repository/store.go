// Package repository holds the snapshot record store the calculators read from.
package repository

import (
	"context"

	"github.com/okian/fieldpulse/internal/domain/model"
)

// Snapshot is a consistent copy of every record at one revision.
// Records in a snapshot are shared with the store and must not be mutated.
type Snapshot struct {
	Revision    uint64
	Projects    []model.Project
	Technicians []model.Technician
	Goals       []model.BusinessGoal
}

// Counts reports the number of stored records by kind.
type Counts struct {
	Projects    int `json:"projects"`
	Technicians int `json:"technicians"`
	Goals       int `json:"goals"`
}

// Store provides read/write access to business records.
type Store interface {
	// PutProject inserts or replaces a project. An empty id is assigned.
	PutProject(ctx context.Context, p model.Project) (model.Project, error)
	// PutTechnician inserts or replaces a technician. An empty id is assigned.
	PutTechnician(ctx context.Context, t model.Technician) (model.Technician, error)
	// PutGoal inserts or replaces a goal. An empty id is assigned.
	PutGoal(ctx context.Context, g model.BusinessGoal) (model.BusinessGoal, error)

	// DeleteProject removes a project. Returns ErrNotFound if it is unknown.
	DeleteProject(ctx context.Context, id string) error
	// DeleteTechnician removes a technician. Projects keep their reference.
	DeleteTechnician(ctx context.Context, id string) error

	// Project returns one project or ErrNotFound.
	Project(ctx context.Context, id string) (model.Project, error)

	// Snapshot returns every record in insertion order.
	Snapshot(ctx context.Context) Snapshot

	// Revision increases on every successful write.
	Revision() uint64

	// Count returns the number of stored records by kind.
	Count(ctx context.Context) Counts
}

package repository

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/okian/fieldpulse/internal/domain/model"
	"github.com/okian/fieldpulse/pkg/logger"
	"github.com/okian/fieldpulse/pkg/metrics"
)

// table keeps records of one kind in insertion order.
type table[T any] struct {
	order []string
	rows  map[string]T
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) put(id string, v T) {
	if _, ok := t.rows[id]; !ok {
		t.order = append(t.order, id)
	}
	t.rows[id] = v
}

func (t *table[T]) get(id string) (T, bool) {
	v, ok := t.rows[id]
	return v, ok
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, oid := range t.order {
		if oid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

func (t *table[T]) list() []T {
	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.rows[id])
	}
	return out
}

// MemoryStore is an in-memory Store guarded by a single RWMutex.
type MemoryStore struct {
	mu          sync.RWMutex
	projects    *table[model.Project]
	technicians *table[model.Technician]
	goals       *table[model.BusinessGoal]
	revision    atomic.Uint64

	newID  func() string
	logger logger.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		projects:    newTable[model.Project](),
		technicians: newTable[model.Technician](),
		goals:       newTable[model.BusinessGoal](),
		newID:       uuid.NewString,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PutProject implements Store.
func (s *MemoryStore) PutProject(ctx context.Context, p model.Project) (model.Project, error) {
	if err := model.ValidateProject(&p); err != nil {
		return model.Project{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if p.ID == "" {
		p.ID = s.newID()
	}
	p = cloneProject(p)

	s.mu.Lock()
	s.projects.put(p.ID, p)
	s.commit(ctx)
	s.mu.Unlock()

	s.logger.Debug(ctx, "project stored", logger.String("id", p.ID), logger.String("status", string(p.Status)))
	return p, nil
}

// PutTechnician implements Store.
func (s *MemoryStore) PutTechnician(ctx context.Context, t model.Technician) (model.Technician, error) {
	if err := model.ValidateTechnician(&t); err != nil {
		return model.Technician{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if t.ID == "" {
		t.ID = s.newID()
	}
	t = cloneTechnician(t)

	s.mu.Lock()
	s.technicians.put(t.ID, t)
	s.commit(ctx)
	s.mu.Unlock()

	s.logger.Debug(ctx, "technician stored", logger.String("id", t.ID))
	return t, nil
}

// PutGoal implements Store.
func (s *MemoryStore) PutGoal(ctx context.Context, g model.BusinessGoal) (model.BusinessGoal, error) {
	if err := model.ValidateGoal(&g); err != nil {
		return model.BusinessGoal{}, fmt.Errorf("%w: %w", ErrInvalidRecord, err)
	}
	if g.ID == "" {
		g.ID = s.newID()
	}

	s.mu.Lock()
	s.goals.put(g.ID, g)
	s.commit(ctx)
	s.mu.Unlock()

	s.logger.Debug(ctx, "goal stored", logger.String("id", g.ID), logger.String("goal_type", string(g.GoalType)))
	return g, nil
}

// DeleteProject implements Store.
func (s *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.projects.remove(id) {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	s.commit(ctx)
	return nil
}

// DeleteTechnician implements Store.
func (s *MemoryStore) DeleteTechnician(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.technicians.remove(id) {
		return fmt.Errorf("technician %q: %w", id, ErrNotFound)
	}
	s.commit(ctx)
	return nil
}

// Project implements Store.
func (s *MemoryStore) Project(_ context.Context, id string) (model.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects.get(id)
	if !ok {
		return model.Project{}, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return p, nil
}

// Snapshot implements Store.
func (s *MemoryStore) Snapshot(_ context.Context) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Revision:    s.revision.Load(),
		Projects:    s.projects.list(),
		Technicians: s.technicians.list(),
		Goals:       s.goals.list(),
	}
}

// Revision implements Store.
func (s *MemoryStore) Revision() uint64 {
	return s.revision.Load()
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) Counts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

func (s *MemoryStore) countLocked() Counts {
	return Counts{
		Projects:    len(s.projects.rows),
		Technicians: len(s.technicians.rows),
		Goals:       len(s.goals.rows),
	}
}

// commit must be called with s.mu held for writing.
func (s *MemoryStore) commit(_ context.Context) {
	s.revision.Add(1)
	c := s.countLocked()
	metrics.UpdateRecordCount("projects", c.Projects)
	metrics.UpdateRecordCount("technicians", c.Technicians)
	metrics.UpdateRecordCount("goals", c.Goals)
}

// cloneProject detaches every pointer field from the caller's copy.
func cloneProject(p model.Project) model.Project {
	if p.Quote.Total != nil {
		v := *p.Quote.Total
		p.Quote.Total = &v
	}
	if p.ActualHours != nil {
		v := *p.ActualHours
		p.ActualHours = &v
	}
	if p.CompletedAt != nil {
		v := *p.CompletedAt
		p.CompletedAt = &v
	}
	if p.Schedule.ScheduledDate != nil {
		v := *p.Schedule.ScheduledDate
		p.Schedule.ScheduledDate = &v
	}
	if p.Invoice != nil {
		inv := *p.Invoice
		inv.Payments = append([]model.Payment(nil), inv.Payments...)
		if inv.DueDate != nil {
			v := *inv.DueDate
			inv.DueDate = &v
		}
		p.Invoice = &inv
	}
	return p
}

// cloneTechnician detaches the roster slices and certification expiries.
func cloneTechnician(t model.Technician) model.Technician {
	t.Skills = append([]string(nil), t.Skills...)
	t.Certifications = append([]model.Certification(nil), t.Certifications...)
	for i := range t.Certifications {
		if exp := t.Certifications[i].ExpiresAt; exp != nil {
			v := *exp
			t.Certifications[i].ExpiresAt = &v
		}
	}
	return t
}

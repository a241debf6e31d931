package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid record")

// ValidateProject checks the invariants a stored project must hold.
func ValidateProject(p *Project) error {
	if !p.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalid, p.Status)
	}
	if v, ok := p.QuoteTotal(); ok && v < 0 {
		return fmt.Errorf("%w: negative quote total %v", ErrInvalid, v)
	}
	if p.ActualHours != nil && *p.ActualHours < 0 {
		return fmt.Errorf("%w: negative actual_hours", ErrInvalid)
	}
	if p.Callbacks < 0 {
		return fmt.Errorf("%w: negative callbacks", ErrInvalid)
	}
	if p.Invoice != nil && p.Invoice.Amount < 0 {
		return fmt.Errorf("%w: negative invoice amount", ErrInvalid)
	}
	return nil
}

// ValidateTechnician checks the invariants a stored technician must hold.
func ValidateTechnician(t *Technician) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: missing technician name", ErrInvalid)
	}
	if !t.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalid, t.Role)
	}
	return nil
}

// ValidateGoal checks the invariants a stored goal must hold.
func ValidateGoal(g *BusinessGoal) error {
	switch {
	case !g.GoalType.Valid():
		return fmt.Errorf("%w: unknown goal type %q", ErrInvalid, g.GoalType)
	case !g.PeriodType.Valid():
		return fmt.Errorf("%w: unknown period type %q", ErrInvalid, g.PeriodType)
	case g.TargetValue < 0:
		return fmt.Errorf("%w: negative target value", ErrInvalid)
	case g.Year <= 0:
		return fmt.Errorf("%w: missing year", ErrInvalid)
	case g.PeriodType == PeriodMonthly && (g.Month < 1 || g.Month > 12):
		return fmt.Errorf("%w: month must be 1-12", ErrInvalid)
	case g.PeriodType == PeriodQuarterly && (g.Quarter < 1 || g.Quarter > 4):
		return fmt.Errorf("%w: quarter must be 1-4", ErrInvalid)
	}
	return nil
}

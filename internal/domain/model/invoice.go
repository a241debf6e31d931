package model

import (
	"sort"
	"time"
)

// Payment is a single amount received against an invoice.
type Payment struct {
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}

// Invoice is the receivable raised for a project.
type Invoice struct {
	Number     string     `json:"number,omitempty"`
	Amount     float64    `json:"amount"`
	IssuedDate time.Time  `json:"issuedDate"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Payments   []Payment  `json:"payments,omitempty"`
}

// OutstandingAt returns the unpaid amount counting payments made up to at.
func (i *Invoice) OutstandingAt(at time.Time) float64 {
	if i.IssuedDate.After(at) {
		return 0
	}
	left := i.Amount
	for _, p := range i.Payments {
		if !p.Date.After(at) {
			left -= p.Amount
		}
	}
	if left < 0 {
		return 0
	}
	return left
}

// PaidDate returns the date of the payment that settled the invoice, counting
// only payments made up to at.
func (i *Invoice) PaidDate(at time.Time) (time.Time, bool) {
	if len(i.Payments) == 0 || i.Amount <= 0 {
		return time.Time{}, false
	}
	payments := make([]Payment, 0, len(i.Payments))
	for _, p := range i.Payments {
		if !p.Date.After(at) {
			payments = append(payments, p)
		}
	}
	sort.SliceStable(payments, func(a, b int) bool { return payments[a].Date.Before(payments[b].Date) })

	paid := 0.0
	for _, p := range payments {
		paid += p.Amount
		if paid >= i.Amount {
			return p.Date, true
		}
	}
	return time.Time{}, false
}

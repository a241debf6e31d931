// Package model contains the record shapes shared by the calculators and the
// adapters. Records are plain values; the calculators never mutate them.
package model

import "time"

// Status is the lifecycle state of a project. It only moves forward.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusQuoted    Status = "quoted"
	StatusApproved  Status = "approved"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
)

// OpenStatuses lists the pipeline stages in display order.
var OpenStatuses = []Status{StatusDraft, StatusQuoted, StatusApproved, StatusScheduled}

// Valid reports whether s is one of the five known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusQuoted, StatusApproved, StatusScheduled, StatusCompleted:
		return true
	}
	return false
}

// Won reports whether the client accepted the work.
func (s Status) Won() bool {
	return s == StatusApproved || s == StatusScheduled || s == StatusCompleted
}

// Quote is the priced offer attached to a project.
type Quote struct {
	// Total is nil until the project has been quoted.
	Total      *float64 `json:"total,omitempty"`
	ClientName string   `json:"clientName,omitempty"`
}

// Schedule holds the booking of a project.
type Schedule struct {
	ScheduledDate *time.Time `json:"scheduledDate,omitempty"`
}

// Project is a service job moving from draft to completion.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Date        time.Time `json:"date"`
	Quote       Quote     `json:"quote"`
	ClientName  string    `json:"clientName,omitempty"`
	ClientEmail string    `json:"clientEmail,omitempty"`

	// AssignedTechnicianID is a lookup key, the technician may no longer exist.
	AssignedTechnicianID string     `json:"assignedTechnicianId,omitempty"`
	Schedule             Schedule   `json:"schedule"`
	ActualHours          *float64   `json:"actual_hours,omitempty"`
	CompletedAt          *time.Time `json:"completedAt,omitempty"`

	// Callbacks counts return visits needed to fix this job.
	Callbacks int      `json:"callbacks,omitempty"`
	Invoice   *Invoice `json:"invoice,omitempty"`
}

// QuoteTotal returns the quoted amount and whether the project has one.
func (p *Project) QuoteTotal() (float64, bool) {
	if p.Quote.Total == nil {
		return 0, false
	}
	return *p.Quote.Total, true
}

// QuoteValue returns the quoted amount or 0.
func (p *Project) QuoteValue() float64 {
	v, _ := p.QuoteTotal()
	return v
}

// DisplayClient resolves the client name shown next to the project.
func (p *Project) DisplayClient() string {
	switch {
	case p.Quote.ClientName != "":
		return p.Quote.ClientName
	case p.ClientName != "":
		return p.ClientName
	}
	return "Unknown"
}

// ClientKey identifies the client for distinct-client counts.
func (p *Project) ClientKey() string {
	if p.ClientEmail != "" {
		return p.ClientEmail
	}
	return p.DisplayClient()
}

// FinishedAt is the best known completion time of the job.
func (p *Project) FinishedAt() time.Time {
	switch {
	case p.CompletedAt != nil:
		return *p.CompletedAt
	case p.Schedule.ScheduledDate != nil:
		return *p.Schedule.ScheduledDate
	}
	return p.Date
}

// Day is the length of a calendar day used for all age computations.
const Day = 24 * time.Hour

// DaysBetween returns the whole days elapsed from since to now, rounded down.
// It is negative when since lies in the future.
func DaysBetween(since, now time.Time) int {
	d := now.Sub(since)
	days := int(d / Day)
	if d < 0 && d%Day != 0 {
		days--
	}
	return days
}

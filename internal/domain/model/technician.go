package model

import (
	"strings"
	"time"
)

// Role is a technician's position in the crew.
type Role string

const (
	RoleLead       Role = "lead"
	RoleTechnician Role = "technician"
	RoleApprentice Role = "apprentice"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleLead, RoleTechnician, RoleApprentice:
		return true
	}
	return false
}

// Certification is a licence or training held by a technician.
type Certification struct {
	Name      string     `json:"name"`
	IssuedAt  time.Time  `json:"issuedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Technician is a roster entry.
type Technician struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Role           Role            `json:"role"`
	Active         bool            `json:"active"`
	LocationID     string          `json:"locationId,omitempty"`
	Skills         []string        `json:"skills,omitempty"`
	Certifications []Certification `json:"certifications,omitempty"`
}

// PlaceholderName builds a display name for a technician id with no roster entry.
func PlaceholderName(id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return "Technician " + strings.ToUpper(short)
}

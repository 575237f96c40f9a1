package adoptions

import (
	"strings"
	"time"
)

// Status de una solicitud de adopción. No está ligado al Status de la mascota.
// @Enum Pending, Approved, Rejected
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

func ParseStatus(s string) (Status, bool) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, true
		}
	}
	return "", false
}

// Request es una solicitud de adopción sobre una mascota.
type Request struct {
	ID    string
	PetID string

	RequesterName string
	Email         string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter: coincidencia exacta; vacío = sin filtro.
type ListFilter struct {
	RequesterName string
	Email         string
	PetID         string
}

func (f ListFilter) Matches(r Request) bool {
	if f.RequesterName != "" && r.RequesterName != f.RequesterName {
		return false
	}
	if f.Email != "" && r.Email != f.Email {
		return false
	}
	if f.PetID != "" && r.PetID != f.PetID {
		return false
	}
	return true
}

const (
	maxRequesterName = 100
	maxEmail         = 100
)

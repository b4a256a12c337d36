// Package models defines events and courses chaplains can enroll in.
package models

import (
	"strings"
	"time"

	"capela/pkg/dates"
	dErrors "capela/pkg/domain-errors"
)

// Event is a course or gathering with an enrollment list of credential
// record ids.
type Event struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Description  string             `json:"description,omitempty"`
	Location     string             `json:"location"`
	StartDate    dates.CalendarDate `json:"start_date"`
	EndDate      dates.CalendarDate `json:"end_date"`
	Active       bool               `json:"active"`
	Participants []string           `json:"participants"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// Validate checks the fields a new or updated event must carry.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "nome do evento é obrigatório")
	}
	if e.StartDate.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "data de início é obrigatória")
	}
	if !e.EndDate.IsZero() && e.EndDate.Time().Before(e.StartDate.Time()) {
		return dErrors.New(dErrors.CodeBadRequest, "data de término anterior à data de início")
	}
	return nil
}

// HasParticipant reports whether the record is already enrolled.
func (e *Event) HasParticipant(recordID string) bool {
	for _, p := range e.Participants {
		if p == recordID {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so store snapshots cannot be mutated by callers.
func (e *Event) Clone() *Event {
	cp := *e
	cp.Participants = make([]string, len(e.Participants))
	copy(cp.Participants, e.Participants)
	return &cp
}

package entity

import (
	"fmt"
	"strings"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// AllAppointmentStatuses lists every status in lifecycle order.
var AllAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusCompleted,
	AppointmentStatusCanceled,
	AppointmentStatusNoShow,
}

// allowedTransitions is the full appointment state machine. Statuses with an
// empty set are terminal.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCanceled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCanceled, AppointmentStatusNoShow},
	AppointmentStatusCompleted: {},
	AppointmentStatusCanceled:  {},
	AppointmentStatusNoShow:    {},
}

// InvalidTransitionError names the current status and the statuses reachable from it.
type InvalidTransitionError struct {
	From    AppointmentStatus
	To      AppointmentStatus
	Allowed []AppointmentStatus
}

func (e *InvalidTransitionError) Error() string {
	allowed := "none (terminal state)"
	if len(e.Allowed) > 0 {
		names := make([]string, len(e.Allowed))
		for i, s := range e.Allowed {
			names[i] = string(s)
		}
		allowed = strings.Join(names, ", ")
	}
	return fmt.Sprintf("invalid status transition from %s to %s; allowed from %s: %s", e.From, e.To, e.From, allowed)
}

func (s AppointmentStatus) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// IsTerminal reports whether no transition leaves s.
func (s AppointmentStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

// AllowedNext returns a copy of the statuses reachable from s.
func (s AppointmentStatus) AllowedNext() []AppointmentStatus {
	next := allowedTransitions[s]
	out := make([]AppointmentStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is permitted. Same status is a no-op
// and always permitted for a known status.
func CanTransition(from, to AppointmentStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns *InvalidTransitionError when from -> to is not permitted.
func ValidateTransition(from, to AppointmentStatus) error {
	if CanTransition(from, to) {
		return nil
	}
	return &InvalidTransitionError{From: from, To: to, Allowed: from.AllowedNext()}
}

// ParseAppointmentStatus parses a canonical status name, case-insensitively.
func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	status := AppointmentStatus(strings.ToLower(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", false
	}
	return status, true
}

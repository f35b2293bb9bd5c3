package repository

import (
	"errors"
	"fmt"
)

// Table names used to tag stale-version failures.
const (
	TableTimeSlots    = "time_slots"
	TableAppointments = "appointments"
)

// Constraint names shared by the SQL migrations and the in-memory store.
const (
	ConstraintSlotDoctorDateStart        = "uq_time_slots_doctor_date_start"
	ConstraintSlotOverlap                = "ex_time_slots_doctor_overlap"
	ConstraintAppointmentActiveSlot      = "uq_appointments_active_slot"
	ConstraintAppointmentDoctorDateStart = "uq_appointments_doctor_date_start"
)

var (
	// ErrStaleVersion is returned when a versioned update matched no row:
	// the record changed (or vanished) since it was read.
	ErrStaleVersion = errors.New("record was modified since it was read")

	// ErrUniqueViolation is the errors.Is target for *UniqueViolationError.
	ErrUniqueViolation = errors.New("unique constraint violation")
)

// UniqueViolationError reports which uniqueness rule a write broke.
type UniqueViolationError struct {
	Constraint string
	Err        error
}

func (e *UniqueViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unique constraint %q violated: %v", e.Constraint, e.Err)
	}
	return fmt.Sprintf("unique constraint %q violated", e.Constraint)
}

func (e *UniqueViolationError) Unwrap() error {
	return e.Err
}

func (e *UniqueViolationError) Is(target error) bool {
	return target == ErrUniqueViolation
}

// StaleVersionError reports which record failed its version check.
// errors.Is(err, ErrStaleVersion) holds for every StaleVersionError.
type StaleVersionError struct {
	Table string
	ID    string
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Table, e.ID, ErrStaleVersion)
}

func (e *StaleVersionError) Is(target error) bool {
	return target == ErrStaleVersion
}

// StaleTable returns the table named by a *StaleVersionError in err's chain,
// or "" when the conflict is not attributed to a table.
func StaleTable(err error) string {
	var stale *StaleVersionError
	if errors.As(err, &stale) {
		return stale.Table
	}
	return ""
}

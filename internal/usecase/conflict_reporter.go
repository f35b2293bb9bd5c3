package usecase

import (
	"context"
	"errors"
	"fmt"

	"medical-slot-booking/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

// conflictScope tells the reporter what the failed unit was doing, which
// decides how a stale version or uniqueness failure reads to the caller.
type conflictScope int

const (
	// scopeClaim: the unit was claiming a slot for a booking.
	scopeClaim conflictScope = iota
	// scopeReschedule: the unit swapped slots and updated an appointment.
	scopeReschedule
	// scopeLifecycle: the unit updated an existing appointment.
	scopeLifecycle
	// scopeSlotAdmin: the unit added or removed slots.
	scopeSlotAdmin
)

// conflictReporter turns store failures into *Error values.
type conflictReporter struct {
	log *logrus.Logger
}

func (r *conflictReporter) report(op string, scope conflictScope, err error) error {
	if err == nil {
		return nil
	}

	var ue *Error
	if errors.As(err, &ue) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		r.log.Warnf("%s: unit did not complete in time: %+v", op, err)
		return ErrUnavailable.wrap(err)
	}

	if errors.Is(err, repository.ErrStaleVersion) {
		switch scope {
		case scopeClaim:
			return ErrSlotUnavailable.wrap(err)
		case scopeReschedule:
			if repository.StaleTable(err) == repository.TableAppointments {
				return ErrConcurrencyConflict.wrap(err)
			}
			return ErrSlotUnavailable.wrap(err)
		default:
			return ErrConcurrencyConflict.wrap(err)
		}
	}

	var uv *repository.UniqueViolationError
	if errors.As(err, &uv) {
		if scope == scopeClaim || scope == scopeReschedule {
			switch uv.Constraint {
			case repository.ConstraintAppointmentActiveSlot, repository.ConstraintAppointmentDoctorDateStart:
				return ErrSlotUnavailable.wrap(err)
			}
		}
		if scope == scopeSlotAdmin && uv.Constraint == repository.ConstraintSlotOverlap {
			return ErrSlotOverlap.wrap(err)
		}
		return &Error{
			Kind:    KindDuplicateConstraint,
			Message: fmt.Sprintf("%s (%s)", ErrDuplicate.Message, uv.Constraint),
			Err:     err,
		}
	}

	r.log.Errorf("%s: unexpected store failure: %+v", op, err)
	return ErrInternal.wrap(err)
}

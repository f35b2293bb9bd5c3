package usecase

import (
	"context"
	"fmt"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

const (
	maxNotesLength              = 2000
	maxCancellationReasonLength = 500
)

// TransitionPayload carries the optional fields a status change may set.
type TransitionPayload struct {
	Notes              string
	CancellationReason string
}

type AppointmentLifecycleUsecase interface {
	Transition(ctx context.Context, appointmentID, callerUserID uuid.UUID, target entity.AppointmentStatus, payload TransitionPayload) (*entity.Appointment, error)
	Confirm(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error)
	Complete(ctx context.Context, appointmentID, callerUserID uuid.UUID, notes string) (*entity.Appointment, error)
	MarkNoShow(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error)
	Cancel(ctx context.Context, appointmentID, callerUserID uuid.UUID, reason string) (*entity.Appointment, error)
	Reschedule(ctx context.Context, appointmentID, patientUserID, newSlotID uuid.UUID, reason string) (*entity.Appointment, error)
	GetAppointment(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error)
}

type appointmentLifecycleUsecase struct {
	*engine
}

func NewAppointmentLifecycleUsecase(deps Deps) AppointmentLifecycleUsecase {
	return &appointmentLifecycleUsecase{engine: newEngine(deps)}
}

// Transition moves an appointment to target.
//
// Order of checks: existence, transition table, past-date guard for
// cancellation, caller authorization. Asking for the current status is a
// successful no-op for an authorized caller, even for a past canceled
// appointment. Cancellation releases the slot in the same unit.
func (u *appointmentLifecycleUsecase) Transition(ctx context.Context, appointmentID, callerUserID uuid.UUID, target entity.AppointmentStatus, payload TransitionPayload) (*entity.Appointment, error) {
	if !target.IsValid() {
		return nil, validationError(fmt.Sprintf("unknown appointment status %q", target))
	}
	if len(payload.Notes) > maxNotesLength {
		return nil, validationError("notes must not exceed 2000 characters")
	}
	if len(payload.CancellationReason) > maxCancellationReasonLength {
		return nil, validationError("cancellation reason must not exceed 500 characters")
	}

	appointment, err := u.load(ctx, "Transition", appointmentID)
	if err != nil {
		return nil, err
	}

	if err := entity.ValidateTransition(appointment.Status, target); err != nil {
		return nil, invalidTransition(err)
	}

	if target == entity.AppointmentStatusCanceled && appointment.Status != target && appointment.AppointmentDate.Before(u.today()) {
		return nil, ErrCancelPast
	}

	if err := u.authorize(ctx, appointment, callerUserID, target); err != nil {
		return nil, err
	}

	if appointment.Status == target {
		return appointment, nil
	}

	previous := appointment.Status
	updated := *appointment
	updated.Status = target
	switch target {
	case entity.AppointmentStatusCompleted:
		if payload.Notes != "" {
			updated.Notes = payload.Notes
		}
	case entity.AppointmentStatusCanceled:
		cancelledAt := u.now().UTC()
		updated.CancellationReason = payload.CancellationReason
		updated.CancelledAt = &cancelledAt
	}

	err = u.runUnit(ctx, "Transition", scopeLifecycle, func(ctx context.Context, tx repository.Store) error {
		if target == entity.AppointmentStatusCanceled {
			slot, err := tx.TimeSlots().FindByID(ctx, appointment.SlotID)
			if err != nil {
				return err
			}
			if slot != nil && slot.IsBooked {
				if err := tx.TimeSlots().SetBooked(ctx, slot, false); err != nil {
					return err
				}
			}
		}

		if err := tx.Appointments().Update(ctx, &updated); err != nil {
			return err
		}

		return u.audit.LogUpdate(ctx, tx, &callerUserID, entity.AuditActionAppointmentStatus, "appointment", appointment.ID.String(),
			map[string]interface{}{"status": previous},
			map[string]interface{}{"status": target, "notes": updated.Notes, "cancellation_reason": updated.CancellationReason})
	})
	if err != nil {
		return nil, err
	}

	if target == entity.AppointmentStatusCanceled {
		u.invalidate(ctx, updated.DoctorID)
	}
	event := entity.NewAppointmentEvent(entity.EventAppointmentStatus, &updated, u.now().UTC())
	event.PreviousStatus = previous
	u.publish(ctx, event)

	return &updated, nil
}

func (u *appointmentLifecycleUsecase) Confirm(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error) {
	return u.Transition(ctx, appointmentID, callerUserID, entity.AppointmentStatusConfirmed, TransitionPayload{})
}

func (u *appointmentLifecycleUsecase) Complete(ctx context.Context, appointmentID, callerUserID uuid.UUID, notes string) (*entity.Appointment, error) {
	return u.Transition(ctx, appointmentID, callerUserID, entity.AppointmentStatusCompleted, TransitionPayload{Notes: notes})
}

func (u *appointmentLifecycleUsecase) MarkNoShow(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error) {
	return u.Transition(ctx, appointmentID, callerUserID, entity.AppointmentStatusNoShow, TransitionPayload{})
}

func (u *appointmentLifecycleUsecase) Cancel(ctx context.Context, appointmentID, callerUserID uuid.UUID, reason string) (*entity.Appointment, error) {
	return u.Transition(ctx, appointmentID, callerUserID, entity.AppointmentStatusCanceled, TransitionPayload{CancellationReason: reason})
}

// Reschedule moves the appointment to newSlotID, releasing the old slot and
// claiming the new one in a single unit. The status is left unchanged.
func (u *appointmentLifecycleUsecase) Reschedule(ctx context.Context, appointmentID, patientUserID, newSlotID uuid.UUID, reason string) (*entity.Appointment, error) {
	if len(reason) > maxReasonLength {
		return nil, validationError("reschedule reason must not exceed 500 characters")
	}

	appointment, err := u.load(ctx, "Reschedule", appointmentID)
	if err != nil {
		return nil, err
	}

	patient, err := u.directory.GetPatientByID(ctx, appointment.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", appointment.PatientID, err)
		return nil, u.lookupErr("Reschedule", err)
	}
	if patient == nil || patient.UserID != patientUserID {
		return nil, &Error{Kind: KindUnauthorized, Message: "only the patient can reschedule appointments", Err: ErrUnauthorized}
	}

	if appointment.Status == entity.AppointmentStatusCanceled || appointment.Status == entity.AppointmentStatusCompleted {
		return nil, ErrRescheduleClosed
	}

	previousSlotID := appointment.SlotID
	updated := *appointment
	err = u.runUnit(ctx, "Reschedule", scopeReschedule, func(ctx context.Context, tx repository.Store) error {
		newSlot, err := tx.TimeSlots().FindByID(ctx, newSlotID)
		if err != nil {
			return err
		}
		if newSlot == nil || !newSlot.IsAvailable() {
			return ErrSlotUnavailable
		}
		if newSlot.DoctorID != appointment.DoctorID {
			return ErrSlotDoctorMismatch
		}
		if newSlot.Date.Before(u.today()) {
			return ErrSlotInPast
		}

		oldSlot, err := tx.TimeSlots().FindByID(ctx, previousSlotID)
		if err != nil {
			return err
		}
		if oldSlot != nil && oldSlot.IsBooked {
			if err := tx.TimeSlots().SetBooked(ctx, oldSlot, false); err != nil {
				return err
			}
		}

		if err := tx.TimeSlots().SetBooked(ctx, newSlot, true); err != nil {
			return err
		}

		updated.CopySlot(newSlot)
		if err := tx.Appointments().Update(ctx, &updated); err != nil {
			return err
		}

		return u.audit.LogUpdate(ctx, tx, &patientUserID, entity.AuditActionAppointmentSchedule, "appointment", appointment.ID.String(),
			map[string]interface{}{"slot_id": previousSlotID, "date": appointment.AppointmentDate.Format(entity.DateLayout), "start_time": appointment.StartTime},
			map[string]interface{}{"slot_id": newSlot.ID, "date": newSlot.Date.Format(entity.DateLayout), "start_time": newSlot.StartTime, "reason": reason})
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, updated.DoctorID)
	event := entity.NewAppointmentEvent(entity.EventAppointmentRescheduled, &updated, u.now().UTC())
	event.PreviousSlotID = &previousSlotID
	u.publish(ctx, event)

	return &updated, nil
}

// GetAppointment returns the appointment if the caller is its patient, its
// doctor or an admin.
func (u *appointmentLifecycleUsecase) GetAppointment(ctx context.Context, appointmentID, callerUserID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.load(ctx, "GetAppointment", appointmentID)
	if err != nil {
		return nil, err
	}

	allowed, err := u.isParticipantOrAdmin(ctx, appointment, callerUserID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrUnauthorized
	}
	return appointment, nil
}

func (u *appointmentLifecycleUsecase) load(ctx context.Context, op string, appointmentID uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.store.Appointments().FindByID(ctx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, u.lookupErr(op, err)
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	return appointment, nil
}

// authorize applies the role rules: only the assigned doctor confirms,
// completes or marks a no-show; the doctor, the patient or an admin may cancel.
func (u *appointmentLifecycleUsecase) authorize(ctx context.Context, appointment *entity.Appointment, callerUserID uuid.UUID, target entity.AppointmentStatus) error {
	switch target {
	case entity.AppointmentStatusConfirmed, entity.AppointmentStatusCompleted, entity.AppointmentStatusNoShow:
		isDoctor, err := u.isAssignedDoctor(ctx, appointment, callerUserID)
		if err != nil {
			return err
		}
		if !isDoctor {
			return &Error{
				Kind:    KindUnauthorized,
				Message: fmt.Sprintf("only the assigned doctor can set status %s", target),
				Err:     ErrUnauthorized,
			}
		}
		return nil
	default:
		allowed, err := u.isParticipantOrAdmin(ctx, appointment, callerUserID)
		if err != nil {
			return err
		}
		if !allowed {
			return &Error{
				Kind:    KindUnauthorized,
				Message: "only the doctor, the patient or an admin can cancel this appointment",
				Err:     ErrUnauthorized,
			}
		}
		return nil
	}
}

func (u *appointmentLifecycleUsecase) isAssignedDoctor(ctx context.Context, appointment *entity.Appointment, callerUserID uuid.UUID) (bool, error) {
	doctor, err := u.directory.GetDoctorByID(ctx, appointment.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", appointment.DoctorID, err)
		return false, u.lookupErr("authorize", err)
	}
	return doctor != nil && doctor.UserID == callerUserID, nil
}

func (u *appointmentLifecycleUsecase) isParticipantOrAdmin(ctx context.Context, appointment *entity.Appointment, callerUserID uuid.UUID) (bool, error) {
	isDoctor, err := u.isAssignedDoctor(ctx, appointment, callerUserID)
	if err != nil || isDoctor {
		return isDoctor, err
	}

	patient, err := u.directory.GetPatientByID(ctx, appointment.PatientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", appointment.PatientID, err)
		return false, u.lookupErr("authorize", err)
	}
	if patient != nil && patient.UserID == callerUserID {
		return true, nil
	}

	isAdmin, err := u.identity.HasRole(ctx, callerUserID, entity.RoleAdmin)
	if err != nil {
		u.log.Warnf("Failed to check role for user %s: %+v", callerUserID, err)
		return false, u.lookupErr("authorize", err)
	}
	return isAdmin, nil
}

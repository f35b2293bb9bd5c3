package usecase

import (
	"context"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

const maxReasonLength = 500

// BookRequest asks for one slot on behalf of the calling patient.
type BookRequest struct {
	PatientUserID  uuid.UUID
	DoctorID       uuid.UUID
	TimeSlotID     uuid.UUID
	ReasonForVisit string
}

type AppointmentBookingUsecase interface {
	Book(ctx context.Context, req BookRequest) (*entity.Appointment, error)
}

type appointmentBookingUsecase struct {
	*engine
}

func NewAppointmentBookingUsecase(deps Deps) AppointmentBookingUsecase {
	return &appointmentBookingUsecase{engine: newEngine(deps)}
}

// Book claims the slot and creates a pending appointment in one unit.
//
// Flow:
// 1. Check the patient (verified email, profile) and the doctor (exists, approved)
// 2. Inside the unit: load the slot and reject it if gone, booked, foreign or past
// 3. Flip the slot to booked under its version token
// 4. Insert the appointment with the slot's date/time snapshot
// 5. Write the audit entry and commit
//
// A concurrent winner shows up as a stale slot version or a uniqueness
// violation on the appointment indexes; both roll the unit back and surface
// as ErrSlotUnavailable.
func (u *appointmentBookingUsecase) Book(ctx context.Context, req BookRequest) (*entity.Appointment, error) {
	if len(req.ReasonForVisit) > maxReasonLength {
		return nil, validationError("reason for visit must not exceed 500 characters")
	}

	verified, err := u.identity.IsEmailVerified(ctx, req.PatientUserID)
	if err != nil {
		u.log.Warnf("Failed to check email verification for user %s: %+v", req.PatientUserID, err)
		return nil, u.lookupErr("Book", err)
	}
	if !verified {
		return nil, ErrEmailNotVerified
	}

	patient, err := u.directory.GetPatientByUser(ctx, req.PatientUserID)
	if err != nil {
		u.log.Warnf("Failed to find patient profile for user %s: %+v", req.PatientUserID, err)
		return nil, u.lookupErr("Book", err)
	}
	if patient == nil {
		return nil, ErrPatientProfileMissing
	}

	doctor, err := u.directory.GetDoctorByID(ctx, req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, u.lookupErr("Book", err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if !doctor.IsApproved {
		return nil, ErrDoctorNotApproved
	}

	var appointment *entity.Appointment
	err = u.runUnit(ctx, "Book", scopeClaim, func(ctx context.Context, tx repository.Store) error {
		slot, err := tx.TimeSlots().FindByID(ctx, req.TimeSlotID)
		if err != nil {
			return err
		}
		if slot == nil || !slot.IsAvailable() {
			return ErrSlotUnavailable
		}
		if slot.DoctorID != doctor.ID {
			return ErrSlotDoctorMismatch
		}
		if slot.Date.Before(u.today()) {
			return ErrSlotInPast
		}

		if err := tx.TimeSlots().SetBooked(ctx, slot, true); err != nil {
			return err
		}

		appointment = &entity.Appointment{
			ID:             uuid.New(),
			PatientID:      patient.ID,
			DoctorID:       doctor.ID,
			ClinicID:       doctor.ClinicID,
			Status:         entity.AppointmentStatusPending,
			ReasonForVisit: req.ReasonForVisit,
			Version:        1,
		}
		appointment.CopySlot(slot)

		if err := tx.Appointments().Create(ctx, appointment); err != nil {
			return err
		}

		return u.audit.LogCreate(ctx, tx, &req.PatientUserID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), appointment)
	})
	if err != nil {
		if KindOf(err) == KindSlotUnavailable {
			u.log.Infof("Booking of slot %s by user %s lost: %v", req.TimeSlotID, req.PatientUserID, err)
		}
		return nil, err
	}

	u.invalidate(ctx, doctor.ID)
	u.publish(ctx, entity.NewAppointmentEvent(entity.EventAppointmentBooked, appointment, u.now().UTC()))
	return appointment, nil
}

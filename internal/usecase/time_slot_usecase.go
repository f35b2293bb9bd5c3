package usecase

import (
	"context"
	"fmt"
	"time"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

// SlotInput is one requested slot in an AddSlots batch.
type SlotInput struct {
	Date      time.Time
	StartTime entity.TimeOfDay
	EndTime   entity.TimeOfDay
}

type TimeSlotUsecase interface {
	AddSlots(ctx context.Context, doctorID, ownerUserID uuid.UUID, inputs []SlotInput) ([]entity.TimeSlot, error)
	DeleteSlot(ctx context.Context, doctorID, slotID, ownerUserID uuid.UUID) error
	GetAvailability(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]entity.TimeSlot, error)
}

type timeSlotUsecase struct {
	*engine
}

func NewTimeSlotUsecase(deps Deps) TimeSlotUsecase {
	return &timeSlotUsecase{engine: newEngine(deps)}
}

// AddSlots validates and inserts a batch of slots for a doctor. The batch is
// all-or-nothing: one overlapping or invalid slot rejects every slot.
func (u *timeSlotUsecase) AddSlots(ctx context.Context, doctorID, ownerUserID uuid.UUID, inputs []SlotInput) ([]entity.TimeSlot, error) {
	if len(inputs) == 0 {
		return nil, validationError("at least one time slot is required")
	}

	if _, err := u.ownedDoctor(ctx, "AddSlots", doctorID, ownerUserID); err != nil {
		return nil, err
	}

	today := u.today()
	slots := make([]*entity.TimeSlot, 0, len(inputs))
	for i, in := range inputs {
		date := entity.DateOnly(in.Date)
		if date.Before(today) {
			return nil, validationError(fmt.Sprintf("slot %d: cannot create time slots in the past", i+1))
		}
		if !in.StartTime.Valid() || !in.EndTime.Valid() {
			return nil, validationError(fmt.Sprintf("slot %d: invalid time of day", i+1))
		}
		if in.StartTime >= in.EndTime {
			return nil, validationError(fmt.Sprintf("slot %d: start time must be before end time", i+1))
		}

		for _, prev := range slots {
			if prev.OverlapsWith(date, in.StartTime, in.EndTime) {
				return nil, &Error{
					Kind: KindBusinessRule,
					Message: fmt.Sprintf("%s: %s %s-%s overlaps %s-%s in the same request",
						ErrSlotOverlap.Message, date.Format(entity.DateLayout), in.StartTime, in.EndTime, prev.StartTime, prev.EndTime),
					Err: ErrSlotOverlap,
				}
			}
		}

		slots = append(slots, &entity.TimeSlot{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			Date:      date,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			Version:   1,
		})
	}

	err := u.runUnit(ctx, "AddSlots", scopeSlotAdmin, func(ctx context.Context, tx repository.Store) error {
		for _, slot := range slots {
			existing, err := tx.TimeSlots().FindOverlapping(ctx, doctorID, slot.Date, slot.StartTime, slot.EndTime)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				u.log.Warnf("Rejected overlapping slot for doctor %s on %s %s-%s", doctorID, slot.Date.Format(entity.DateLayout), slot.StartTime, slot.EndTime)
				return &Error{
					Kind: KindBusinessRule,
					Message: fmt.Sprintf("%s: %s %s-%s overlaps %s-%s",
						ErrSlotOverlap.Message, slot.Date.Format(entity.DateLayout), slot.StartTime, slot.EndTime, existing[0].StartTime, existing[0].EndTime),
					Err: ErrSlotOverlap,
				}
			}
		}

		if err := tx.TimeSlots().CreateBatch(ctx, slots); err != nil {
			return err
		}

		ids := make([]string, len(slots))
		for i, slot := range slots {
			ids[i] = slot.ID.String()
		}
		return u.audit.LogCreate(ctx, tx, &ownerUserID, entity.AuditActionSlotCreate, "time_slot", doctorID.String(), ids)
	})
	if err != nil {
		return nil, err
	}

	u.invalidate(ctx, doctorID)

	out := make([]entity.TimeSlot, len(slots))
	for i, slot := range slots {
		out[i] = *slot
	}
	return out, nil
}

// DeleteSlot soft-deletes an unbooked slot owned by the doctor.
func (u *timeSlotUsecase) DeleteSlot(ctx context.Context, doctorID, slotID, ownerUserID uuid.UUID) error {
	if _, err := u.ownedDoctor(ctx, "DeleteSlot", doctorID, ownerUserID); err != nil {
		return err
	}

	err := u.runUnit(ctx, "DeleteSlot", scopeSlotAdmin, func(ctx context.Context, tx repository.Store) error {
		slot, err := tx.TimeSlots().FindByID(ctx, slotID)
		if err != nil {
			return err
		}
		if slot == nil || slot.DoctorID != doctorID {
			return ErrSlotNotFound
		}
		if slot.IsBooked {
			return ErrSlotBooked
		}

		before := *slot
		if err := tx.TimeSlots().SoftDelete(ctx, slot); err != nil {
			return err
		}
		return u.audit.LogDelete(ctx, tx, &ownerUserID, entity.AuditActionSlotDelete, "time_slot", slotID.String(), before)
	})
	if err != nil {
		return err
	}

	u.invalidate(ctx, doctorID)
	return nil
}

// GetAvailability lists unbooked slots in [startDate, endDate], ordered by
// date then start time.
func (u *timeSlotUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time) ([]entity.TimeSlot, error) {
	startDate, endDate = entity.DateOnly(startDate), entity.DateOnly(endDate)
	if endDate.Before(startDate) {
		return nil, validationError("end date must not be before start date")
	}

	slots, err := u.cache.Get(ctx, doctorID, startDate, endDate, func(ctx context.Context) ([]entity.TimeSlot, error) {
		return u.store.TimeSlots().FindByFilter(ctx, entity.SlotFilter{
			DoctorID:      doctorID,
			StartDate:     startDate,
			EndDate:       endDate,
			OnlyAvailable: true,
		})
	})
	if err != nil {
		u.log.Warnf("Failed to load availability for doctor %s: %+v", doctorID, err)
		return nil, u.lookupErr("GetAvailability", err)
	}
	if slots == nil {
		slots = []entity.TimeSlot{}
	}
	return slots, nil
}

// ownedDoctor loads the doctor and checks the caller is its account holder.
func (u *timeSlotUsecase) ownedDoctor(ctx context.Context, op string, doctorID, ownerUserID uuid.UUID) (*entity.DoctorProfile, error) {
	doctor, err := u.directory.GetDoctorByID(ctx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, u.lookupErr(op, err)
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if doctor.UserID != ownerUserID {
		return nil, &Error{Kind: KindUnauthorized, Message: "you can only manage your own time slots", Err: ErrUnauthorized}
	}
	return doctor, nil
}

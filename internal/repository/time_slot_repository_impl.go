package repository

import (
	"context"
	"errors"
	"time"

	"medical-slot-booking/internal/domain/entity"
	domainRepo "medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type timeSlotRepository struct {
	db *gorm.DB
}

func (r *timeSlotRepository) CreateBatch(ctx context.Context, slots []*entity.TimeSlot) error {
	if len(slots) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Create(slots).Error)
}

func (r *timeSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error) {
	var slot entity.TimeSlot
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &slot, nil
}

func (r *timeSlotRepository) FindByFilter(ctx context.Context, filter entity.SlotFilter) ([]entity.TimeSlot, error) {
	query := r.db.WithContext(ctx).Where("doctor_id = ?", filter.DoctorID)

	if !filter.StartDate.IsZero() {
		query = query.Where("slot_date >= ?", filter.StartDate.Format(entity.DateLayout))
	}
	if !filter.EndDate.IsZero() {
		query = query.Where("slot_date <= ?", filter.EndDate.Format(entity.DateLayout))
	}
	if filter.OnlyAvailable {
		query = query.Where("is_booked = ?", false)
	}
	if !filter.IncludeDeleted {
		query = query.Where("deleted_at IS NULL")
	}

	var slots []entity.TimeSlot
	err := query.Order("slot_date ASC, start_time ASC").Find(&slots).Error
	if err != nil {
		return nil, translateError(err)
	}
	return slots, nil
}

// FindOverlapping returns live slots of the doctor on date whose interval
// intersects [start, end): existing.start < end AND start < existing.end.
func (r *timeSlotRepository) FindOverlapping(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end entity.TimeOfDay) ([]entity.TimeSlot, error) {
	var slots []entity.TimeSlot
	err := r.db.WithContext(ctx).
		Where("doctor_id = ? AND slot_date = ? AND deleted_at IS NULL", doctorID, date.Format(entity.DateLayout)).
		Where("start_time < ? AND end_time > ?", end, start).
		Order("start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, translateError(err)
	}
	return slots, nil
}

func (r *timeSlotRepository) SetBooked(ctx context.Context, slot *entity.TimeSlot, booked bool) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.TimeSlot{}).
		Where("id = ? AND version = ? AND deleted_at IS NULL", slot.ID, slot.Version).
		Updates(map[string]interface{}{
			"is_booked":  booked,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &domainRepo.StaleVersionError{Table: domainRepo.TableTimeSlots, ID: slot.ID.String()}
	}

	slot.IsBooked = booked
	slot.Version++
	slot.UpdatedAt = now
	return nil
}

func (r *timeSlotRepository) SoftDelete(ctx context.Context, slot *entity.TimeSlot) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.TimeSlot{}).
		Where("id = ? AND version = ? AND is_booked = ? AND deleted_at IS NULL", slot.ID, slot.Version, false).
		Updates(map[string]interface{}{
			"deleted_at": now,
			"version":    gorm.Expr("version + 1"),
			"updated_at": now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &domainRepo.StaleVersionError{Table: domainRepo.TableTimeSlots, ID: slot.ID.String()}
	}

	slot.DeletedAt = &now
	slot.Version++
	slot.UpdatedAt = now
	return nil
}

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

type appointmentRepository struct {
	db *gorm.DB
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return translateError(r.db.WithContext(ctx).Create(appointment).Error)
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := r.db.WithContext(ctx).
		Where("slot_id = ? AND status <> ? AND deleted_at IS NULL", slotID, entity.AppointmentStatusCanceled).
		First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &appointment, nil
}

// Update writes every mutable column guarded by the version token.
func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND version = ? AND deleted_at IS NULL", appointment.ID, appointment.Version).
		Updates(map[string]interface{}{
			"status":              appointment.Status,
			"notes":               appointment.Notes,
			"cancellation_reason": appointment.CancellationReason,
			"cancelled_at":        appointment.CancelledAt,
			"slot_id":             appointment.SlotID,
			"appointment_date":    appointment.AppointmentDate,
			"start_time":          appointment.StartTime,
			"end_time":            appointment.EndTime,
			"version":             gorm.Expr("version + 1"),
			"updated_at":          now,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return &domainRepo.StaleVersionError{Table: domainRepo.TableAppointments, ID: appointment.ID.String()}
	}

	appointment.Version++
	appointment.UpdatedAt = now
	return nil
}

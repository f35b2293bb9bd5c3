package repository

import (
	"context"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error)
	FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*entity.Appointment, error)
	// Update persists the mutable fields if appointment.Version is still
	// current, bumping the version on success. Returns ErrStaleVersion otherwise.
	Update(ctx context.Context, appointment *entity.Appointment) error
}

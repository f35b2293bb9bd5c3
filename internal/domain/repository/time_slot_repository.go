package repository

import (
	"context"
	"time"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// TimeSlotRepository reads and writes slots. Soft-deleted slots are never returned.
type TimeSlotRepository interface {
	CreateBatch(ctx context.Context, slots []*entity.TimeSlot) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error)
	FindByFilter(ctx context.Context, filter entity.SlotFilter) ([]entity.TimeSlot, error)
	FindOverlapping(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end entity.TimeOfDay) ([]entity.TimeSlot, error)
	// SetBooked flips IsBooked if slot.Version is still current, bumping the
	// version on success. Returns ErrStaleVersion otherwise.
	SetBooked(ctx context.Context, slot *entity.TimeSlot, booked bool) error
	SoftDelete(ctx context.Context, slot *entity.TimeSlot) error
}

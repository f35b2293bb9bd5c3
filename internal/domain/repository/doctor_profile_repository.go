package repository

import (
	"context"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type DoctorProfileRepository interface {
	Create(ctx context.Context, profile *entity.DoctorProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.DoctorProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)
}

package repository

import (
	"context"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

type PatientProfileRepository interface {
	Create(ctx context.Context, profile *entity.PatientProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PatientProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error)
}

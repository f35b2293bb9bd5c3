package repository

import (
	"context"
	"errors"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type doctorProfileRepository struct {
	db *gorm.DB
}

func (r *doctorProfileRepository) Create(ctx context.Context, profile *entity.DoctorProfile) error {
	return translateError(r.db.WithContext(ctx).Create(profile).Error)
}

func (r *doctorProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DoctorProfile, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return r.findOne(ctx, "user_id = ?", userID)
}

func (r *doctorProfileRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.DoctorProfile, error) {
	var profile entity.DoctorProfile
	err := r.db.WithContext(ctx).Preload("User").Where(query, args...).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, translateError(err)
	}
	return &profile, nil
}

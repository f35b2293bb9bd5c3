package service

import (
	"context"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

// DirectoryService answers identity and profile lookups from the Store's
// user and profile tables.
type DirectoryService struct {
	store repository.Store
}

func NewDirectoryService(store repository.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// IsEmailVerified reports false for unknown or deactivated users.
func (s *DirectoryService) IsEmailVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return user.IsActive && user.EmailVerified, nil
}

func (s *DirectoryService) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil || user == nil {
		return false, err
	}
	return user.IsActive && entity.RoleNameByID(user.RoleID) == role, nil
}

func (s *DirectoryService) GetPatientByUser(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error) {
	return s.store.PatientProfiles().FindByUserID(ctx, userID)
}

func (s *DirectoryService) GetPatientByID(ctx context.Context, id uuid.UUID) (*entity.PatientProfile, error) {
	return s.store.PatientProfiles().FindByID(ctx, id)
}

func (s *DirectoryService) GetDoctorByID(ctx context.Context, id uuid.UUID) (*entity.DoctorProfile, error) {
	return s.store.DoctorProfiles().FindByID(ctx, id)
}

func (s *DirectoryService) GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return s.store.DoctorProfiles().FindByUserID(ctx, userID)
}

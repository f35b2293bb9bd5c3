package repository

import (
	"context"

	domainRepo "medical-slot-booking/internal/domain/repository"

	"gorm.io/gorm"
)

type store struct {
	db *gorm.DB
}

// NewStore returns a PostgreSQL-backed Store. Every repository it hands out
// runs against the same *gorm.DB, so inside WithTx they share one transaction.
func NewStore(db *gorm.DB) domainRepo.Store {
	return &store{db: db}
}

func (s *store) TimeSlots() domainRepo.TimeSlotRepository {
	return &timeSlotRepository{db: s.db}
}

func (s *store) Appointments() domainRepo.AppointmentRepository {
	return &appointmentRepository{db: s.db}
}

func (s *store) AuditLogs() domainRepo.AuditLogRepository {
	return &auditLogRepository{db: s.db}
}

func (s *store) Users() domainRepo.UserRepository {
	return &userRepository{db: s.db}
}

func (s *store) DoctorProfiles() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{db: s.db}
}

func (s *store) PatientProfiles() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{db: s.db}
}

func (s *store) WithTx(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	// No-op once committed; covers error returns and panics in fn.
	defer tx.Rollback()

	if err := fn(&store{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return translateError(err)
	}
	return nil
}

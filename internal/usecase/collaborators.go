package usecase

import (
	"context"
	"time"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// IdentityProvider answers identity questions owned by the auth subsystem.
type IdentityProvider interface {
	IsEmailVerified(ctx context.Context, userID uuid.UUID) (bool, error)
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// Directory resolves patient and doctor profiles. Lookups return nil, nil
// when nothing matches.
type Directory interface {
	GetPatientByUser(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*entity.PatientProfile, error)
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*entity.DoctorProfile, error)
	GetDoctorByUser(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error)
}

// EventPublisher delivers post-commit notifications. Failures are logged by
// the caller and never undo a committed unit.
type EventPublisher interface {
	Publish(ctx context.Context, event entity.AppointmentEvent) error
}

// AvailabilityCache fronts availability reads. load is called on a miss.
type AvailabilityCache interface {
	Get(ctx context.Context, doctorID uuid.UUID, startDate, endDate time.Time, load func(ctx context.Context) ([]entity.TimeSlot, error)) ([]entity.TimeSlot, error)
	Invalidate(ctx context.Context, doctorID uuid.UUID) error
}

// Metrics records unit-of-work outcomes.
type Metrics interface {
	ObserveUnit(operation string, kind string, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) ObserveUnit(string, string, time.Duration) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, entity.AppointmentEvent) error { return nil }

type passthroughCache struct{}

func (passthroughCache) Get(ctx context.Context, _ uuid.UUID, _, _ time.Time, load func(ctx context.Context) ([]entity.TimeSlot, error)) ([]entity.TimeSlot, error) {
	return load(ctx)
}

func (passthroughCache) Invalidate(context.Context, uuid.UUID) error { return nil }

package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictReporter(t *testing.T) {
	r := &conflictReporter{log: quietLogger()}

	staleSlot := &repository.StaleVersionError{Table: repository.TableTimeSlots, ID: "s1"}
	staleAppt := &repository.StaleVersionError{Table: repository.TableAppointments, ID: "a1"}
	activeSlot := &repository.UniqueViolationError{Constraint: repository.ConstraintAppointmentActiveSlot}
	doctorStart := &repository.UniqueViolationError{Constraint: repository.ConstraintAppointmentDoctorDateStart}
	slotStart := &repository.UniqueViolationError{Constraint: repository.ConstraintSlotDoctorDateStart}
	slotOverlap := &repository.UniqueViolationError{Constraint: repository.ConstraintSlotOverlap}

	cases := []struct {
		name  string
		scope conflictScope
		err   error
		want  Kind
	}{
		{"claim stale slot", scopeClaim, staleSlot, KindSlotUnavailable},
		{"claim unattributed stale", scopeClaim, repository.ErrStaleVersion, KindSlotUnavailable},
		{"claim active-slot index", scopeClaim, activeSlot, KindSlotUnavailable},
		{"claim doctor/date/start index", scopeClaim, doctorStart, KindSlotUnavailable},
		{"reschedule stale slot", scopeReschedule, staleSlot, KindSlotUnavailable},
		{"reschedule stale appointment", scopeReschedule, fmt.Errorf("commit: %w", staleAppt), KindConcurrencyConflict},
		{"lifecycle stale appointment", scopeLifecycle, staleAppt, KindConcurrencyConflict},
		{"lifecycle stale slot", scopeLifecycle, staleSlot, KindConcurrencyConflict},
		{"lifecycle unique", scopeLifecycle, activeSlot, KindDuplicateConstraint},
		{"slot admin unique", scopeSlotAdmin, slotStart, KindDuplicateConstraint},
		{"slot admin overlap", scopeSlotAdmin, slotOverlap, KindBusinessRule},
		{"deadline", scopeClaim, context.DeadlineExceeded, KindUnavailable},
		{"canceled", scopeLifecycle, fmt.Errorf("begin: %w", context.Canceled), KindUnavailable},
		{"unknown", scopeClaim, errors.New("disk on fire"), KindInternal},
		{"already classified", scopeClaim, ErrSlotDoctorMismatch, KindBusinessRule},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.report("test", tc.scope, tc.err)
			require.Error(t, got)
			assert.Equal(t, tc.want, KindOf(got))
		})
	}

	assert.NoError(t, r.report("test", scopeClaim, nil))

	hidden := r.report("test", scopeClaim, errors.New("password=hunter2"))
	assert.Equal(t, ErrInternal.Message, hidden.Error(), "internal details are not exposed")

	dup := r.report("test", scopeSlotAdmin, slotStart)
	assert.ErrorIs(t, dup, repository.ErrUniqueViolation)
	assert.Contains(t, dup.Error(), repository.ConstraintSlotDoctorDateStart)

	overlap := r.report("test", scopeSlotAdmin, slotOverlap)
	assert.ErrorIs(t, overlap, ErrSlotOverlap)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Equal(t, KindInvalidTransition, KindOf(entity.ValidateTransition(entity.AppointmentStatusCompleted, entity.AppointmentStatusPending)))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", ErrDoctorNotFound)))
	assert.True(t, KindUnavailable.Retryable())
	assert.False(t, KindSlotUnavailable.Retryable())
}

// blockingStore never finishes a unit until its context ends.
type blockingStore struct {
	repository.Store
}

func (s *blockingStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunUnit_TimesOutClosed(t *testing.T) {
	f := newFixture(t)
	slot := f.addSlot(10)

	deps := f.deps(&blockingStore{Store: f.store})
	deps.UnitTimeout = 20 * time.Millisecond
	booking := NewAppointmentBookingUsecase(deps)

	_, err := booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: slot.ID})
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, KindOf(err).Retryable())
	assert.False(t, f.slot(slot.ID).IsBooked)
}

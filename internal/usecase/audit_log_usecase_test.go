package usecase

import (
	"testing"

	"medical-slot-booking/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogUsecase_ListByAction(t *testing.T) {
	f := newFixture(t)
	audit := NewAuditLogUsecase(f.deps(f.store))

	slot := f.addSlot(9)
	appt := f.book(slot)
	_, err := f.lifecycle.Cancel(f.ctx, appt.ID, f.patientUser, "conflict")
	require.NoError(t, err)

	logs, err := audit.ListByAction(f.ctx, f.adminUser, entity.AuditActionAppointmentStatus)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.patientUser, *logs[0].UserID)

	t.Run("admins only", func(t *testing.T) {
		_, err := audit.ListByAction(f.ctx, f.doctorUser, entity.AuditActionAppointmentStatus)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := audit.ListByAction(f.ctx, f.adminUser, "product.create")
		assert.Equal(t, KindValidation, KindOf(err))
	})

	t.Run("empty result is not nil", func(t *testing.T) {
		logs, err := audit.ListByAction(f.ctx, f.adminUser, entity.AuditActionSlotDelete)
		require.NoError(t, err)
		assert.NotNil(t, logs)
		assert.Empty(t, logs)
	})
}

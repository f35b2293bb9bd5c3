package usecase

import (
	"strings"
	"sync"
	"testing"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentBookingUsecase_Book(t *testing.T) {
	f := newFixture(t)
	slot := f.addSlot(10)

	appt, err := f.booking.Book(f.ctx, BookRequest{
		PatientUserID:  f.patientUser,
		DoctorID:       f.doctor.ID,
		TimeSlotID:     slot.ID,
		ReasonForVisit: "chest pain",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.AppointmentStatusPending, appt.Status)
	assert.Equal(t, f.patient.ID, appt.PatientID)
	assert.Equal(t, f.doctor.ClinicID, appt.ClinicID)
	assert.Equal(t, slot.ID, appt.SlotID)
	assert.True(t, entity.SameDate(slotDay, appt.AppointmentDate))
	assert.Equal(t, slot.StartTime, appt.StartTime)
	assert.Equal(t, slot.EndTime, appt.EndTime)
	assert.Equal(t, "chest pain", appt.ReasonForVisit)

	stored := f.slot(slot.ID)
	assert.True(t, stored.IsBooked)
	assert.EqualValues(t, 2, stored.Version)

	require.Equal(t, 1, f.events.Count())
	assert.Equal(t, entity.EventAppointmentBooked, f.events.Last().Type)

	logs, err := f.store.AuditLogs().FindByAction(f.ctx, entity.AuditActionAppointmentBook)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, appt.ID.String(), logs[0].Metadata["entity_id"])
}

func TestAppointmentBookingUsecase_Preconditions(t *testing.T) {
	f := newFixture(t)
	slot := f.addSlot(10)

	unverified := f.addUser(entity.RoleIDPatient, false)
	f.addPatient(unverified)
	_, err := f.booking.Book(f.ctx, BookRequest{PatientUserID: unverified, DoctorID: f.doctor.ID, TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	noProfile := f.addUser(entity.RoleIDPatient, true)
	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: noProfile, DoctorID: f.doctor.ID, TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, ErrPatientProfileMissing)

	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: uuid.New(), TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
	assert.Equal(t, KindNotFound, KindOf(err))

	pending := f.addDoctor(f.addUser(entity.RoleIDDoctor, true), false)
	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: pending.ID, TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, ErrDoctorNotApproved)

	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: slot.ID, ReasonForVisit: strings.Repeat("x", 501)})
	assert.Equal(t, KindValidation, KindOf(err))

	assert.False(t, f.slot(slot.ID).IsBooked, "rejected requests leave the slot untouched")
	assert.Zero(t, f.events.Count())
}

func TestAppointmentBookingUsecase_SlotChecks(t *testing.T) {
	f := newFixture(t)

	_, err := f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: uuid.New()})
	assert.ErrorIs(t, err, ErrSlotUnavailable)

	slot := f.addSlot(10)
	f.book(slot)
	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: slot.ID})
	assert.ErrorIs(t, err, ErrSlotUnavailable)
	assert.Equal(t, KindSlotUnavailable, KindOf(err))

	other := f.addDoctor(f.addUser(entity.RoleIDDoctor, true), true)
	foreign := f.addSlotOn(other, slotDay, 10)
	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: foreign.ID})
	assert.ErrorIs(t, err, ErrSlotDoctorMismatch)
	assert.Equal(t, KindBusinessRule, KindOf(err))

	past := f.addSlot(12)
	f.clock.Set(slotDay.AddDate(0, 0, 1))
	_, err = f.booking.Book(f.ctx, BookRequest{PatientUserID: f.patientUser, DoctorID: f.doctor.ID, TimeSlotID: past.ID})
	assert.ErrorIs(t, err, ErrSlotInPast)
	assert.False(t, f.slot(past.ID).IsBooked)
}

func TestAppointmentBookingUsecase_NoDoubleBookingUnderConcurrency(t *testing.T) {
	f := newFixture(t)
	slot := f.addSlot(10)

	const workers = 32
	patients := make([]uuid.UUID, workers)
	for i := range patients {
		patients[i] = f.addUser(entity.RoleIDPatient, true)
		f.addPatient(patients[i])
	}

	var (
		wg      sync.WaitGroup
		start   = make(chan struct{})
		results = make([]error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, results[i] = f.booking.Book(f.ctx, BookRequest{
				PatientUserID: patients[i],
				DoctorID:      f.doctor.ID,
				TimeSlotID:    slot.ID,
			})
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, KindSlotUnavailable, KindOf(err), "losers see SlotUnavailable, got %v", err)
	}
	assert.Equal(t, 1, succeeded)

	active, err := f.store.Appointments().FindActiveBySlot(f.ctx, slot.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.True(t, f.slot(slot.ID).IsBooked)
	assert.Equal(t, 1, f.events.Count())
}

func TestAppointmentBookingUsecase_RebookAfterCancel(t *testing.T) {
	f := newFixture(t)
	slot := f.addSlot(10)
	first := f.book(slot)

	_, err := f.lifecycle.Cancel(f.ctx, first.ID, f.patientUser, "conflict")
	require.NoError(t, err)
	assert.False(t, f.slot(slot.ID).IsBooked)

	second, err := f.booking.Book(f.ctx, BookRequest{PatientUserID: f.otherUser, DoctorID: f.doctor.ID, TimeSlotID: slot.ID})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, f.slot(slot.ID).IsBooked)
}

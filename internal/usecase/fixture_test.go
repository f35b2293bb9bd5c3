package usecase

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"medical-slot-booking/internal/domain/entity"
	"medical-slot-booking/internal/domain/repository"
	"medical-slot-booking/internal/repository/memory"
	"medical-slot-booking/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// slotDay is five days after the fixture's "now".
var slotDay = time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.AppointmentEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event entity.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func (p *recordingPublisher) Last() entity.AppointmentEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

type recordingCache struct {
	mu          sync.Mutex
	invalidated []uuid.UUID
}

func (c *recordingCache) Get(ctx context.Context, _ uuid.UUID, _, _ time.Time, load func(ctx context.Context) ([]entity.TimeSlot, error)) ([]entity.TimeSlot, error) {
	return load(ctx)
}

func (c *recordingCache) Invalidate(_ context.Context, doctorID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, doctorID)
	return nil
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *memory.Store
	clock  *testClock
	events *recordingPublisher
	cache  *recordingCache

	doctorUser  uuid.UUID
	patientUser uuid.UUID
	adminUser   uuid.UUID
	otherUser   uuid.UUID

	doctor  *entity.DoctorProfile
	patient *entity.PatientProfile

	slots     TimeSlotUsecase
	booking   AppointmentBookingUsecase
	lifecycle AppointmentLifecycleUsecase
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  memory.NewStore(),
		clock:  &testClock{now: time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)},
		events: &recordingPublisher{},
		cache:  &recordingCache{},
	}

	f.doctorUser = f.addUser(entity.RoleIDDoctor, true)
	f.patientUser = f.addUser(entity.RoleIDPatient, true)
	f.adminUser = f.addUser(entity.RoleIDAdmin, true)
	f.otherUser = f.addUser(entity.RoleIDPatient, true)

	f.doctor = f.addDoctor(f.doctorUser, true)
	f.patient = f.addPatient(f.patientUser)
	f.addPatient(f.otherUser)

	f.wire(f.store)
	return f
}

// wire builds the usecases over store, which may wrap f.store.
func (f *fixture) wire(store repository.Store) {
	deps := f.deps(store)
	f.slots = NewTimeSlotUsecase(deps)
	f.booking = NewAppointmentBookingUsecase(deps)
	f.lifecycle = NewAppointmentLifecycleUsecase(deps)
}

func (f *fixture) deps(store repository.Store) Deps {
	log := quietLogger()
	dir := service.NewDirectoryService(f.store)
	return Deps{
		Store:       store,
		Directory:   dir,
		Identity:    dir,
		Audit:       service.NewAuditService(log),
		Events:      f.events,
		Cache:       f.cache,
		Log:         log,
		Now:         f.clock.Now,
		UnitTimeout: time.Second,
	}
}

func (f *fixture) addUser(roleID int, verified bool) uuid.UUID {
	f.t.Helper()
	user := &entity.User{
		ID:            uuid.New(),
		RoleID:        roleID,
		Email:         uuid.NewString() + "@example.com",
		FullName:      "Test User",
		EmailVerified: verified,
		IsActive:      true,
	}
	require.NoError(f.t, f.store.Users().Create(f.ctx, user))
	return user.ID
}

func (f *fixture) addDoctor(userID uuid.UUID, approved bool) *entity.DoctorProfile {
	f.t.Helper()
	doctor := &entity.DoctorProfile{
		ID:             uuid.New(),
		UserID:         userID,
		ClinicID:       uuid.New(),
		Specialization: "Cardiology",
		IsApproved:     approved,
	}
	require.NoError(f.t, f.store.DoctorProfiles().Create(f.ctx, doctor))
	return doctor
}

func (f *fixture) addPatient(userID uuid.UUID) *entity.PatientProfile {
	f.t.Helper()
	patient := &entity.PatientProfile{ID: uuid.New(), UserID: userID}
	require.NoError(f.t, f.store.PatientProfiles().Create(f.ctx, patient))
	return patient
}

// addSlot creates a one-hour slot for the fixture doctor on slotDay.
func (f *fixture) addSlot(startHour int) entity.TimeSlot {
	f.t.Helper()
	return f.addSlotOn(f.doctor, slotDay, startHour)
}

func (f *fixture) addSlotOn(doctor *entity.DoctorProfile, date time.Time, startHour int) entity.TimeSlot {
	f.t.Helper()
	created, err := f.slots.AddSlots(f.ctx, doctor.ID, doctor.UserID, []SlotInput{{
		Date:      date,
		StartTime: entity.NewTimeOfDay(startHour, 0),
		EndTime:   entity.NewTimeOfDay(startHour+1, 0),
	}})
	require.NoError(f.t, err)
	require.Len(f.t, created, 1)
	return created[0]
}

func (f *fixture) book(slot entity.TimeSlot) *entity.Appointment {
	f.t.Helper()
	appt, err := f.booking.Book(f.ctx, BookRequest{
		PatientUserID: f.patientUser,
		DoctorID:      f.doctor.ID,
		TimeSlotID:    slot.ID,
	})
	require.NoError(f.t, err)
	return appt
}

// appointmentIn books a fresh slot and drives the appointment to status.
func (f *fixture) appointmentIn(status entity.AppointmentStatus, startHour int) *entity.Appointment {
	f.t.Helper()
	appt := f.book(f.addSlot(startHour))

	var err error
	switch status {
	case entity.AppointmentStatusPending:
	case entity.AppointmentStatusConfirmed:
		appt, err = f.lifecycle.Confirm(f.ctx, appt.ID, f.doctorUser)
	case entity.AppointmentStatusCompleted:
		appt, err = f.lifecycle.Confirm(f.ctx, appt.ID, f.doctorUser)
		require.NoError(f.t, err)
		appt, err = f.lifecycle.Complete(f.ctx, appt.ID, f.doctorUser, "done")
	case entity.AppointmentStatusNoShow:
		appt, err = f.lifecycle.Confirm(f.ctx, appt.ID, f.doctorUser)
		require.NoError(f.t, err)
		appt, err = f.lifecycle.MarkNoShow(f.ctx, appt.ID, f.doctorUser)
	case entity.AppointmentStatusCanceled:
		appt, err = f.lifecycle.Cancel(f.ctx, appt.ID, f.patientUser, "")
	}
	require.NoError(f.t, err)
	require.Equal(f.t, status, appt.Status)
	return appt
}

func (f *fixture) slot(id uuid.UUID) *entity.TimeSlot {
	f.t.Helper()
	slot, err := f.store.TimeSlots().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, slot)
	return slot
}

func (f *fixture) appointment(id uuid.UUID) *entity.Appointment {
	f.t.Helper()
	appt, err := f.store.Appointments().FindByID(f.ctx, id)
	require.NoError(f.t, err)
	require.NotNil(f.t, appt)
	return appt
}

// hookStore runs a callback before selected writes inside a transaction,
// letting tests commit a competing change mid-unit.
type hookStore struct {
	repository.Store
	beforeClaim      func(slotID uuid.UUID)
	beforeApptUpdate func(appointmentID uuid.UUID)
}

func (s *hookStore) WithTx(ctx context.Context, fn func(tx repository.Store) error) error {
	return s.Store.WithTx(ctx, func(tx repository.Store) error {
		return fn(&hookStore{Store: tx, beforeClaim: s.beforeClaim, beforeApptUpdate: s.beforeApptUpdate})
	})
}

func (s *hookStore) TimeSlots() repository.TimeSlotRepository {
	return &hookSlots{TimeSlotRepository: s.Store.TimeSlots(), beforeClaim: s.beforeClaim}
}

func (s *hookStore) Appointments() repository.AppointmentRepository {
	return &hookAppointments{AppointmentRepository: s.Store.Appointments(), beforeUpdate: s.beforeApptUpdate}
}

type hookSlots struct {
	repository.TimeSlotRepository
	beforeClaim func(slotID uuid.UUID)
}

func (r *hookSlots) SetBooked(ctx context.Context, slot *entity.TimeSlot, booked bool) error {
	if booked && r.beforeClaim != nil {
		r.beforeClaim(slot.ID)
	}
	return r.TimeSlotRepository.SetBooked(ctx, slot, booked)
}

type hookAppointments struct {
	repository.AppointmentRepository
	beforeUpdate func(appointmentID uuid.UUID)
}

func (r *hookAppointments) Update(ctx context.Context, appointment *entity.Appointment) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate(appointment.ID)
	}
	return r.AppointmentRepository.Update(ctx, appointment)
}

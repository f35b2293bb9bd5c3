// Package memory provides an in-memory Store used by tests and by
// STORE_DRIVER=memory. Transactions run against a private copy of the state
// and are validated at commit: a row written by the transaction must still
// carry the version it had when the transaction first touched it, and the
// merged state must satisfy the same uniqueness and exclusion rules as the
// SQL schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"medical-slot-booking/internal/domain/entity"
	domainRepo "medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

var _ domainRepo.Store = (*Store)(nil)

type state struct {
	slots        map[uuid.UUID]entity.TimeSlot
	appointments map[uuid.UUID]entity.Appointment
	users        map[uuid.UUID]entity.User
	doctors      map[uuid.UUID]entity.DoctorProfile
	patients     map[uuid.UUID]entity.PatientProfile
	auditLogs    []entity.AuditLog
}

func newState() state {
	return state{
		slots:        make(map[uuid.UUID]entity.TimeSlot),
		appointments: make(map[uuid.UUID]entity.Appointment),
		users:        make(map[uuid.UUID]entity.User),
		doctors:      make(map[uuid.UUID]entity.DoctorProfile),
		patients:     make(map[uuid.UUID]entity.PatientProfile),
	}
}

// clone copies every map. Entities are stored by value and their pointer
// fields are only ever replaced, never mutated, so a shallow copy is enough.
func (s state) clone() state {
	c := state{
		slots:        make(map[uuid.UUID]entity.TimeSlot, len(s.slots)),
		appointments: make(map[uuid.UUID]entity.Appointment, len(s.appointments)),
		users:        make(map[uuid.UUID]entity.User, len(s.users)),
		doctors:      make(map[uuid.UUID]entity.DoctorProfile, len(s.doctors)),
		patients:     make(map[uuid.UUID]entity.PatientProfile, len(s.patients)),
		auditLogs:    make([]entity.AuditLog, len(s.auditLogs)),
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.appointments {
		c.appointments[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.doctors {
		c.doctors[k] = v
	}
	for k, v := range s.patients {
		c.patients[k] = v
	}
	copy(c.auditLogs, s.auditLogs)
	return c
}

// Store is a concurrency-safe in-memory implementation of repository.Store.
type Store struct {
	mu          sync.RWMutex
	state       state
	nextAuditID int64
	now         func() time.Time
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		state: newState(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) TimeSlots() domainRepo.TimeSlotRepository {
	return &timeSlotRepository{exec: s.autocommit}
}

func (s *Store) Appointments() domainRepo.AppointmentRepository {
	return &appointmentRepository{exec: s.autocommit}
}

func (s *Store) AuditLogs() domainRepo.AuditLogRepository {
	return &auditLogRepository{exec: s.autocommit}
}

func (s *Store) Users() domainRepo.UserRepository {
	return &userRepository{exec: s.autocommit}
}

func (s *Store) DoctorProfiles() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{exec: s.autocommit}
}

func (s *Store) PatientProfiles() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{exec: s.autocommit}
}

// WithTx runs fn against a private copy of the state and publishes its writes
// only if fn succeeds and commit validation passes.
func (s *Store) WithTx(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := s.begin()
	if err := fn(&txStore{txn: t}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(t)
}

// autocommit wraps a single repository call made outside WithTx.
func (s *Store) autocommit(ctx context.Context, fn func(t *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := s.begin()
	if err := fn(t); err != nil {
		return err
	}
	return s.commit(t)
}

func (s *Store) begin() *txn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &txn{
		state:       s.state.clone(),
		now:         s.now,
		slotBase:    make(map[uuid.UUID]int64),
		apptBase:    make(map[uuid.UUID]int64),
		newUsers:    make(map[uuid.UUID]struct{}),
		newDoctors:  make(map[uuid.UUID]struct{}),
		newPatients: make(map[uuid.UUID]struct{}),
		auditOffset: len(s.state.auditLogs),
	}
}

func (s *Store) commit(t *txn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.dirty() {
		return nil
	}

	for id, base := range t.slotBase {
		current, exists := s.state.slots[id]
		if base == 0 && exists {
			return &domainRepo.UniqueViolationError{Constraint: "time_slots_pkey"}
		}
		if base != 0 && (!exists || current.Version != base) {
			return &domainRepo.StaleVersionError{Table: domainRepo.TableTimeSlots, ID: id.String()}
		}
	}
	for id, base := range t.apptBase {
		current, exists := s.state.appointments[id]
		if base == 0 && exists {
			return &domainRepo.UniqueViolationError{Constraint: "appointments_pkey"}
		}
		if base != 0 && (!exists || current.Version != base) {
			return &domainRepo.StaleVersionError{Table: domainRepo.TableAppointments, ID: id.String()}
		}
	}

	merged := s.state.clone()
	for id := range t.slotBase {
		merged.slots[id] = t.state.slots[id]
	}
	for id := range t.apptBase {
		merged.appointments[id] = t.state.appointments[id]
	}
	for id := range t.newUsers {
		if _, exists := merged.users[id]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "users_pkey"}
		}
		merged.users[id] = t.state.users[id]
	}
	for id := range t.newDoctors {
		if _, exists := merged.doctors[id]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "doctor_profiles_pkey"}
		}
		merged.doctors[id] = t.state.doctors[id]
	}
	for id := range t.newPatients {
		if _, exists := merged.patients[id]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "patient_profiles_pkey"}
		}
		merged.patients[id] = t.state.patients[id]
	}

	for id := range t.slotBase {
		if err := checkSlotUnique(merged, merged.slots[id]); err != nil {
			return err
		}
	}
	for id := range t.apptBase {
		if err := checkAppointmentUnique(merged, merged.appointments[id]); err != nil {
			return err
		}
	}

	for _, log := range t.state.auditLogs[t.auditOffset:] {
		s.nextAuditID++
		log.ID = s.nextAuditID
		merged.auditLogs = append(merged.auditLogs, log)
	}

	s.state = merged
	return nil
}

func checkSlotUnique(st state, slot entity.TimeSlot) error {
	if slot.IsDeleted() {
		return nil
	}
	for id, other := range st.slots {
		if id == slot.ID || other.IsDeleted() {
			continue
		}
		if other.DoctorID != slot.DoctorID || !entity.SameDate(other.Date, slot.Date) {
			continue
		}
		if other.StartTime == slot.StartTime {
			return &domainRepo.UniqueViolationError{Constraint: domainRepo.ConstraintSlotDoctorDateStart}
		}
		if entity.Overlaps(other.StartTime, other.EndTime, slot.StartTime, slot.EndTime) {
			return &domainRepo.UniqueViolationError{Constraint: domainRepo.ConstraintSlotOverlap}
		}
	}
	return nil
}

func checkAppointmentUnique(st state, appt entity.Appointment) error {
	if !appt.IsActive() {
		return nil
	}
	for id, other := range st.appointments {
		if id == appt.ID || !other.IsActive() {
			continue
		}
		if other.SlotID == appt.SlotID {
			return &domainRepo.UniqueViolationError{Constraint: domainRepo.ConstraintAppointmentActiveSlot}
		}
		if other.DoctorID == appt.DoctorID && entity.SameDate(other.AppointmentDate, appt.AppointmentDate) && other.StartTime == appt.StartTime {
			return &domainRepo.UniqueViolationError{Constraint: domainRepo.ConstraintAppointmentDoctorDateStart}
		}
	}
	return nil
}

// txn is one unit of work over a private state copy. The base maps record the
// version each row had when the unit first wrote it; zero marks an insert.
type txn struct {
	state       state
	now         func() time.Time
	slotBase    map[uuid.UUID]int64
	apptBase    map[uuid.UUID]int64
	newUsers    map[uuid.UUID]struct{}
	newDoctors  map[uuid.UUID]struct{}
	newPatients map[uuid.UUID]struct{}
	auditOffset int
}

func (t *txn) dirty() bool {
	return len(t.slotBase) > 0 || len(t.apptBase) > 0 ||
		len(t.newUsers) > 0 || len(t.newDoctors) > 0 || len(t.newPatients) > 0 ||
		len(t.state.auditLogs) > t.auditOffset
}

func (t *txn) markSlot(id uuid.UUID, base int64) {
	if _, seen := t.slotBase[id]; !seen {
		t.slotBase[id] = base
	}
}

func (t *txn) markAppointment(id uuid.UUID, base int64) {
	if _, seen := t.apptBase[id]; !seen {
		t.apptBase[id] = base
	}
}

// txStore is the Store handed to WithTx callbacks. Every repository it returns
// shares the same txn.
type txStore struct {
	txn *txn
}

func (s *txStore) exec(ctx context.Context, fn func(t *txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(s.txn)
}

func (s *txStore) TimeSlots() domainRepo.TimeSlotRepository {
	return &timeSlotRepository{exec: s.exec}
}

func (s *txStore) Appointments() domainRepo.AppointmentRepository {
	return &appointmentRepository{exec: s.exec}
}

func (s *txStore) AuditLogs() domainRepo.AuditLogRepository {
	return &auditLogRepository{exec: s.exec}
}

func (s *txStore) Users() domainRepo.UserRepository {
	return &userRepository{exec: s.exec}
}

func (s *txStore) DoctorProfiles() domainRepo.DoctorProfileRepository {
	return &doctorProfileRepository{exec: s.exec}
}

func (s *txStore) PatientProfiles() domainRepo.PatientProfileRepository {
	return &patientProfileRepository{exec: s.exec}
}

func (s *txStore) WithTx(ctx context.Context, fn func(tx domainRepo.Store) error) error {
	return fn(s)
}

func sortSlots(slots []entity.TimeSlot) {
	sort.Slice(slots, func(i, j int) bool {
		if !entity.SameDate(slots[i].Date, slots[j].Date) {
			return slots[i].Date.Before(slots[j].Date)
		}
		return slots[i].StartTime < slots[j].StartTime
	})
}

package memory

import (
	"context"
	"time"

	"medical-slot-booking/internal/domain/entity"
	domainRepo "medical-slot-booking/internal/domain/repository"

	"github.com/google/uuid"
)

type execFunc func(ctx context.Context, fn func(t *txn) error) error

type timeSlotRepository struct {
	exec execFunc
}

func (r *timeSlotRepository) CreateBatch(ctx context.Context, slots []*entity.TimeSlot) error {
	return r.exec(ctx, func(t *txn) error {
		now := t.now()
		for _, slot := range slots {
			if slot.ID == uuid.Nil {
				slot.ID = uuid.New()
			}
			if slot.Version == 0 {
				slot.Version = 1
			}
			slot.Date = entity.DateOnly(slot.Date)
			slot.CreatedAt = now
			slot.UpdatedAt = now

			if _, exists := t.state.slots[slot.ID]; exists {
				return &domainRepo.UniqueViolationError{Constraint: "time_slots_pkey"}
			}
			if err := checkSlotUnique(t.state, *slot); err != nil {
				return err
			}
			t.state.slots[slot.ID] = *slot
			t.markSlot(slot.ID, 0)
		}
		return nil
	})
}

func (r *timeSlotRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TimeSlot, error) {
	var found *entity.TimeSlot
	err := r.exec(ctx, func(t *txn) error {
		slot, ok := t.state.slots[id]
		if ok && !slot.IsDeleted() {
			found = &slot
		}
		return nil
	})
	return found, err
}

func (r *timeSlotRepository) FindByFilter(ctx context.Context, filter entity.SlotFilter) ([]entity.TimeSlot, error) {
	var out []entity.TimeSlot
	err := r.exec(ctx, func(t *txn) error {
		for _, slot := range t.state.slots {
			if slot.DoctorID != filter.DoctorID {
				continue
			}
			if !filter.StartDate.IsZero() && slot.Date.Before(entity.DateOnly(filter.StartDate)) {
				continue
			}
			if !filter.EndDate.IsZero() && slot.Date.After(entity.DateOnly(filter.EndDate)) {
				continue
			}
			if filter.OnlyAvailable && slot.IsBooked {
				continue
			}
			if !filter.IncludeDeleted && slot.IsDeleted() {
				continue
			}
			out = append(out, slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSlots(out)
	return out, nil
}

func (r *timeSlotRepository) FindOverlapping(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end entity.TimeOfDay) ([]entity.TimeSlot, error) {
	var out []entity.TimeSlot
	err := r.exec(ctx, func(t *txn) error {
		for _, slot := range t.state.slots {
			if slot.DoctorID == doctorID && !slot.IsDeleted() && slot.OverlapsWith(date, start, end) {
				out = append(out, slot)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sortSlots(out)
	return out, nil
}

func (r *timeSlotRepository) SetBooked(ctx context.Context, slot *entity.TimeSlot, booked bool) error {
	return r.exec(ctx, func(t *txn) error {
		current, ok := t.state.slots[slot.ID]
		if !ok || current.IsDeleted() || current.Version != slot.Version {
			return &domainRepo.StaleVersionError{Table: domainRepo.TableTimeSlots, ID: slot.ID.String()}
		}
		t.markSlot(current.ID, current.Version)

		current.IsBooked = booked
		current.Version++
		current.UpdatedAt = t.now()
		t.state.slots[current.ID] = current

		slot.IsBooked = current.IsBooked
		slot.Version = current.Version
		slot.UpdatedAt = current.UpdatedAt
		return nil
	})
}

func (r *timeSlotRepository) SoftDelete(ctx context.Context, slot *entity.TimeSlot) error {
	return r.exec(ctx, func(t *txn) error {
		current, ok := t.state.slots[slot.ID]
		if !ok || current.IsDeleted() || current.IsBooked || current.Version != slot.Version {
			return &domainRepo.StaleVersionError{Table: domainRepo.TableTimeSlots, ID: slot.ID.String()}
		}
		t.markSlot(current.ID, current.Version)

		now := t.now()
		current.DeletedAt = &now
		current.Version++
		current.UpdatedAt = now
		t.state.slots[current.ID] = current

		slot.DeletedAt = current.DeletedAt
		slot.Version = current.Version
		slot.UpdatedAt = now
		return nil
	})
}

type appointmentRepository struct {
	exec execFunc
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	return r.exec(ctx, func(t *txn) error {
		if appointment.ID == uuid.Nil {
			appointment.ID = uuid.New()
		}
		if appointment.Version == 0 {
			appointment.Version = 1
		}
		if appointment.Status == "" {
			appointment.Status = entity.AppointmentStatusPending
		}
		now := t.now()
		appointment.AppointmentDate = entity.DateOnly(appointment.AppointmentDate)
		appointment.CreatedAt = now
		appointment.UpdatedAt = now

		if _, exists := t.state.appointments[appointment.ID]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "appointments_pkey"}
		}
		if err := checkAppointmentUnique(t.state, *appointment); err != nil {
			return err
		}
		t.state.appointments[appointment.ID] = *appointment
		t.markAppointment(appointment.ID, 0)
		return nil
	})
}

func (r *appointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Appointment, error) {
	var found *entity.Appointment
	err := r.exec(ctx, func(t *txn) error {
		appt, ok := t.state.appointments[id]
		if ok && appt.DeletedAt == nil {
			found = &appt
		}
		return nil
	})
	return found, err
}

func (r *appointmentRepository) FindActiveBySlot(ctx context.Context, slotID uuid.UUID) (*entity.Appointment, error) {
	var found *entity.Appointment
	err := r.exec(ctx, func(t *txn) error {
		for _, appt := range t.state.appointments {
			if appt.SlotID == slotID && appt.IsActive() {
				a := appt
				found = &a
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	return r.exec(ctx, func(t *txn) error {
		current, ok := t.state.appointments[appointment.ID]
		if !ok || current.DeletedAt != nil || current.Version != appointment.Version {
			return &domainRepo.StaleVersionError{Table: domainRepo.TableAppointments, ID: appointment.ID.String()}
		}

		next := *appointment
		next.AppointmentDate = entity.DateOnly(next.AppointmentDate)
		next.CreatedAt = current.CreatedAt
		next.Version = current.Version + 1
		next.UpdatedAt = t.now()
		if err := checkAppointmentUnique(t.state, next); err != nil {
			return err
		}

		t.markAppointment(current.ID, current.Version)
		t.state.appointments[current.ID] = next

		appointment.Version = next.Version
		appointment.UpdatedAt = next.UpdatedAt
		return nil
	})
}

type auditLogRepository struct {
	exec execFunc
}

func (r *auditLogRepository) Create(ctx context.Context, log *entity.AuditLog) error {
	return r.exec(ctx, func(t *txn) error {
		log.CreatedAt = t.now()
		t.state.auditLogs = append(t.state.auditLogs, *log)
		return nil
	})
}

func (r *auditLogRepository) FindByAction(ctx context.Context, action string) ([]entity.AuditLog, error) {
	var out []entity.AuditLog
	err := r.exec(ctx, func(t *txn) error {
		for _, log := range t.state.auditLogs {
			if log.Action == action {
				out = append(out, log)
			}
		}
		return nil
	})
	return out, err
}

type userRepository struct {
	exec execFunc
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.exec(ctx, func(t *txn) error {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		if _, exists := t.state.users[user.ID]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "users_pkey"}
		}
		for _, other := range t.state.users {
			if other.Email == user.Email {
				return &domainRepo.UniqueViolationError{Constraint: "idx_users_email"}
			}
		}
		now := t.now()
		user.CreatedAt = now
		user.UpdatedAt = now
		t.state.users[user.ID] = *user
		t.newUsers[user.ID] = struct{}{}
		return nil
	})
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var found *entity.User
	err := r.exec(ctx, func(t *txn) error {
		if user, ok := t.state.users[id]; ok {
			found = &user
		}
		return nil
	})
	return found, err
}

type doctorProfileRepository struct {
	exec execFunc
}

func (r *doctorProfileRepository) Create(ctx context.Context, profile *entity.DoctorProfile) error {
	return r.exec(ctx, func(t *txn) error {
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		if _, exists := t.state.doctors[profile.ID]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "doctor_profiles_pkey"}
		}
		for _, other := range t.state.doctors {
			if other.UserID == profile.UserID {
				return &domainRepo.UniqueViolationError{Constraint: "idx_doctor_profiles_user_id"}
			}
		}
		stored := *profile
		stored.User = entity.User{}
		stored.TimeSlots = nil
		t.state.doctors[profile.ID] = stored
		t.newDoctors[profile.ID] = struct{}{}
		return nil
	})
}

func (r *doctorProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.DoctorProfile, error) {
	return r.find(ctx, func(p entity.DoctorProfile) bool { return p.ID == id })
}

func (r *doctorProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.DoctorProfile, error) {
	return r.find(ctx, func(p entity.DoctorProfile) bool { return p.UserID == userID })
}

func (r *doctorProfileRepository) find(ctx context.Context, match func(entity.DoctorProfile) bool) (*entity.DoctorProfile, error) {
	var found *entity.DoctorProfile
	err := r.exec(ctx, func(t *txn) error {
		for _, profile := range t.state.doctors {
			if match(profile) {
				p := profile
				p.User = t.state.users[p.UserID]
				found = &p
				return nil
			}
		}
		return nil
	})
	return found, err
}

type patientProfileRepository struct {
	exec execFunc
}

func (r *patientProfileRepository) Create(ctx context.Context, profile *entity.PatientProfile) error {
	return r.exec(ctx, func(t *txn) error {
		if profile.ID == uuid.Nil {
			profile.ID = uuid.New()
		}
		if _, exists := t.state.patients[profile.ID]; exists {
			return &domainRepo.UniqueViolationError{Constraint: "patient_profiles_pkey"}
		}
		for _, other := range t.state.patients {
			if other.UserID == profile.UserID {
				return &domainRepo.UniqueViolationError{Constraint: "idx_patient_profiles_user_id"}
			}
		}
		stored := *profile
		stored.User = entity.User{}
		stored.Appointments = nil
		t.state.patients[profile.ID] = stored
		t.newPatients[profile.ID] = struct{}{}
		return nil
	})
}

func (r *patientProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PatientProfile, error) {
	return r.find(ctx, func(p entity.PatientProfile) bool { return p.ID == id })
}

func (r *patientProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.PatientProfile, error) {
	return r.find(ctx, func(p entity.PatientProfile) bool { return p.UserID == userID })
}

func (r *patientProfileRepository) find(ctx context.Context, match func(entity.PatientProfile) bool) (*entity.PatientProfile, error) {
	var found *entity.PatientProfile
	err := r.exec(ctx, func(t *txn) error {
		for _, profile := range t.state.patients {
			if match(profile) {
				p := profile
				p.User = t.state.users[p.UserID]
				found = &p
				return nil
			}
		}
		return nil
	})
	return found, err
}

// AuditTrail returns every committed audit entry in commit order.
func (s *Store) AuditTrail() []entity.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.AuditLog, len(s.state.auditLogs))
	copy(out, s.state.auditLogs)
	return out
}

package repository

import "context"

// Store groups the repositories that participate in one atomic unit.
//
// WithTx runs fn against a transactional Store: every read and write made
// through tx commits together when fn returns nil, and rolls back on any
// error or panic. WithTx must not be called on a Store handed to fn.
type Store interface {
	TimeSlots() TimeSlotRepository
	Appointments() AppointmentRepository
	AuditLogs() AuditLogRepository
	Users() UserRepository
	DoctorProfiles() DoctorProfileRepository
	PatientProfiles() PatientProfileRepository

	WithTx(ctx context.Context, fn func(tx Store) error) error
}

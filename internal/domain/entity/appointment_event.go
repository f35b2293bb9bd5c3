package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment event types published after a unit of work commits.
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentStatus      = "appointment.status_changed"
	EventAppointmentRescheduled = "appointment.rescheduled"
)

// AppointmentEvent is the notification payload handed to the event publisher.
type AppointmentEvent struct {
	Type           string            `json:"type"`
	AppointmentID  uuid.UUID         `json:"appointment_id"`
	PatientID      uuid.UUID         `json:"patient_id"`
	DoctorID       uuid.UUID         `json:"doctor_id"`
	SlotID         uuid.UUID         `json:"slot_id"`
	PreviousSlotID *uuid.UUID        `json:"previous_slot_id,omitempty"`
	Status         AppointmentStatus `json:"status"`
	PreviousStatus AppointmentStatus `json:"previous_status,omitempty"`
	Date           string            `json:"date"`
	StartTime      TimeOfDay         `json:"start_time"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// NewAppointmentEvent snapshots a into an event of the given type.
func NewAppointmentEvent(eventType string, a *Appointment, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:          eventType,
		AppointmentID: a.ID,
		PatientID:     a.PatientID,
		DoctorID:      a.DoctorID,
		SlotID:        a.SlotID,
		Status:        a.Status,
		Date:          a.AppointmentDate.Format(DateLayout),
		StartTime:     a.StartTime,
		OccurredAt:    at,
	}
}

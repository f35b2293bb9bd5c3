package dto

import (
	"strings"
	"time"

	"medical-slot-booking/internal/domain/entity"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID       uuid.UUID `json:"doctor_id" validate:"required"`
	TimeSlotID     uuid.UUID `json:"time_slot_id" validate:"required"`
	ReasonForVisit string    `json:"reason_for_visit" validate:"max=500"`
}

type UpdateStatusRequest struct {
	Status             string `json:"status" validate:"required"`
	Notes              string `json:"notes" validate:"max=2000"`
	CancellationReason string `json:"cancellation_reason" validate:"max=500"`
}

type CompleteAppointmentRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type RescheduleRequest struct {
	NewTimeSlotID uuid.UUID `json:"new_time_slot_id" validate:"required"`
	Reason        string    `json:"reason" validate:"max=500"`
}

// ParseStatus maps a client-supplied status name onto the canonical status.
// Spelling and case variants seen from clients are accepted: "Cancelled" and
// "canceled" are the same status, as are "NoShow", "no-show" and "no_show".
func ParseStatus(s string) (entity.AppointmentStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)

	switch key {
	case "pending":
		return entity.AppointmentStatusPending, true
	case "confirmed":
		return entity.AppointmentStatusConfirmed, true
	case "completed":
		return entity.AppointmentStatusCompleted, true
	case "canceled", "cancelled":
		return entity.AppointmentStatusCanceled, true
	case "noshow":
		return entity.AppointmentStatusNoShow, true
	default:
		return "", false
	}
}

// Response DTOs

type AppointmentResponse struct {
	ID                 uuid.UUID  `json:"id"`
	PatientID          uuid.UUID  `json:"patient_id"`
	DoctorID           uuid.UUID  `json:"doctor_id"`
	ClinicID           uuid.UUID  `json:"clinic_id"`
	TimeSlotID         uuid.UUID  `json:"time_slot_id"`
	AppointmentDate    string     `json:"appointment_date"`
	StartTime          string     `json:"start_time"`
	EndTime            string     `json:"end_time"`
	Status             string     `json:"status"`
	ReasonForVisit     string     `json:"reason_for_visit,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	Version            int64      `json:"version"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

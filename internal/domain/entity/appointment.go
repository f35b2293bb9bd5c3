package entity

import (
	"time"

	"github.com/google/uuid"
)

// Appointment links one patient, one doctor and one time slot.
// Date and times are a snapshot of the slot taken at booking or reschedule.
type Appointment struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID          uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	ClinicID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"clinic_id"`
	SlotID             uuid.UUID         `gorm:"type:uuid;not null" json:"slot_id"`
	AppointmentDate    time.Time         `gorm:"type:date;not null;index" json:"appointment_date"`
	StartTime          TimeOfDay         `gorm:"type:time;not null" json:"start_time"`
	EndTime            TimeOfDay         `gorm:"type:time;not null" json:"end_time"`
	Status             AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReasonForVisit     string            `gorm:"type:varchar(500)" json:"reason_for_visit,omitempty"`
	Notes              string            `gorm:"type:varchar(2000)" json:"notes,omitempty"`
	CancellationReason string            `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	Version            int64             `gorm:"not null;default:1" json:"version"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          *time.Time        `gorm:"index" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsActive reports whether the appointment still holds its slot.
func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCanceled && a.DeletedAt == nil
}

// IsCancelled checks if appointment is canceled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCanceled
}

// CopySlot takes the date/time snapshot from slot.
func (a *Appointment) CopySlot(slot *TimeSlot) {
	a.SlotID = slot.ID
	a.AppointmentDate = DateOnly(slot.Date)
	a.StartTime = slot.StartTime
	a.EndTime = slot.EndTime
}

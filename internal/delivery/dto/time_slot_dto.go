package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SlotRequest struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"` // Format: YYYY-MM-DD
	StartTime string `json:"start_time" validate:"required,timeofday"`     // Format: HH:MM
	EndTime   string `json:"end_time" validate:"required,timeofday"`       // Format: HH:MM
}

type CreateSlotsRequest struct {
	Slots []SlotRequest `json:"slots" validate:"required,min=1,max=200,dive"`
}

type AvailabilityQuery struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// Response DTOs

type TimeSlotResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsBooked  bool      `json:"is_booked"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
}

type TimeSlotListResponse struct {
	Slots []TimeSlotResponse `json:"slots"`
	Total int                `json:"total"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// SlotFilter selects a doctor's slots within an inclusive date range.
type SlotFilter struct {
	DoctorID       uuid.UUID
	StartDate      time.Time
	EndDate        time.Time
	OnlyAvailable  bool
	IncludeDeleted bool
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

const DateLayout = "2006-01-02"

// TimeSlot is a bookable [StartTime, EndTime) window owned by one doctor.
// Version changes on every write and is checked on update.
type TimeSlot struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	DoctorID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date      time.Time  `gorm:"column:slot_date;type:date;not null;index" json:"date"`
	StartTime TimeOfDay  `gorm:"type:time;not null" json:"start_time"`
	EndTime   TimeOfDay  `gorm:"type:time;not null" json:"end_time"`
	IsBooked  bool       `gorm:"not null;default:false;index" json:"is_booked"`
	Version   int64      `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"index" json:"-"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}

// IsDeleted checks if the slot was soft deleted
func (s *TimeSlot) IsDeleted() bool {
	return s.DeletedAt != nil
}

// IsAvailable reports whether the slot can back a new appointment.
func (s *TimeSlot) IsAvailable() bool {
	return !s.IsDeleted() && !s.IsBooked
}

// Overlaps reports whether two half-open intervals on the same day intersect.
// Adjacent intervals ([10:00,11:00) and [11:00,12:00)) do not overlap.
func Overlaps(s1, e1, s2, e2 TimeOfDay) bool {
	return s1 < e2 && s2 < e1
}

// OverlapsWith reports whether the slot overlaps [start, end) on the given date.
func (s *TimeSlot) OverlapsWith(date time.Time, start, end TimeOfDay) bool {
	return SameDate(s.Date, date) && Overlaps(s.StartTime, s.EndTime, start, end)
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDate compares calendar dates, ignoring time and location.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DoctorProfile represents doctor-specific profile data.
// AverageRating and TotalReviews are maintained by the review subsystem.
type DoctorProfile struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	ClinicID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"clinic_id"`
	Specialization string          `gorm:"type:varchar(100);not null;index" json:"specialization"`
	IsApproved     bool            `gorm:"not null;default:false" json:"is_approved"`
	AverageRating  decimal.Decimal `gorm:"type:decimal(3,2);not null;default:0" json:"average_rating"`
	TotalReviews   int             `gorm:"not null;default:0" json:"total_reviews"`

	// Relationships
	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TimeSlots []TimeSlot `gorm:"foreignKey:DoctorID" json:"time_slots,omitempty"`
}

func (DoctorProfile) TableName() string {
	return "doctor_profiles"
}

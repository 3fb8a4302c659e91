package models

import "time"

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Appointment links a doctor and a patient to a date and a [start,end) time
// window. Dates are stored as "2006-01-02" and times as zero-padded "15:04"
// strings, so lexical comparison matches temporal order in SQL and in Go.
type Appointment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DoctorID  uint      `gorm:"index;not null" json:"doctor_id"`
	PatientID uint      `gorm:"index;not null" json:"patient_id"`
	Date      string    `gorm:"size:10;not null;index" json:"appointment_date"`
	StartTime string    `gorm:"size:5;not null" json:"start_time"`
	EndTime   string    `gorm:"size:5;not null" json:"end_time"`
	Status    string    `gorm:"size:20;not null;default:SCHEDULED" json:"status"`
	Reason    string    `gorm:"type:text" json:"reason_for_visit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
}

// ValidStatus reports whether s is one of the known appointment statuses.
func ValidStatus(s string) bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// Overlaps reports whether the half-open windows [start1,end1) and
// [start2,end2) intersect. Touching boundaries do not overlap.
func Overlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

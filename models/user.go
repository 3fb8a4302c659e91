package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
	RoleAdmin   = "admin"
)

// User is the single identity record for doctors, patients and admins.
// Role decides which profile extension (DoctorProfile/PatientProfile) applies.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"not null" json:"username"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Phone        *string   `gorm:"unique" json:"phone"`
	Password     string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:patient" json:"role"`
	FullName     string    `json:"fullname"`
	Gender       string    `json:"gender"`
	DateOfBirth  string    `json:"date_of_birth"`
	Address      string    `json:"address"`
	Bio          string    `json:"bio"`
	ProfilePhoto string    `json:"profile_photo"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	DoctorProfile  *DoctorProfile  `json:"doctor_profile,omitempty"`
	PatientProfile *PatientProfile `json:"patient_profile,omitempty"`
}

// BeforeSave rejects unknown roles and keeps the admin flags consistent:
// role=admin always implies is_staff and is_superuser.
func (user *User) BeforeSave(tx *gorm.DB) error {
	switch user.Role {
	case RoleDoctor, RolePatient, RoleAdmin:
	default:
		return errors.New("invalid role: must be 'doctor', 'patient' or 'admin'")
	}
	if user.Role == RoleAdmin {
		user.IsStaff = true
		user.IsSuperuser = true
	}
	return nil
}

// SetPassword stores a bcrypt hash of the given plain text password.
func (user *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashed)
	return nil
}

// CheckPassword compares a plain text password against the stored hash.
func (user *User) CheckPassword(plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(plain))
}

// Specialization is a shared lookup table, deduplicated by exact name.
type Specialization struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"unique;not null" json:"name"`
}

// DoctorProfile holds the doctor-only fields, one-to-one with a doctor User.
type DoctorProfile struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UserID          uint             `gorm:"uniqueIndex;not null" json:"-"`
	LicenseNumber   string           `gorm:"unique;not null" json:"license_number"`
	Specializations []Specialization `gorm:"many2many:doctor_specializations" json:"specializations"`
	YearsExperience int              `json:"years_experience"`
	ClinicName      string           `json:"clinic_name"`
	ClinicAddress   string           `json:"clinic_address"`
}

// PatientProfile holds the patient-only fields, one-to-one with a patient User.
type PatientProfile struct {
	ID               uint   `gorm:"primaryKey" json:"id"`
	UserID           uint   `gorm:"uniqueIndex;not null" json:"-"`
	InsuranceDetails string `json:"insurance_details"`
	MedicalHistory   string `json:"medical_history"`
	EmergencyContact string `json:"emergency_contact"`
}

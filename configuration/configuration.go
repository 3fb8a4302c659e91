package configuration

import (
	"errors"
	"os"

	"clinic-connect/models"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ConfigDB opens the postgres connection from the DB env var and migrates the
// schema. TranslateError lets callers match gorm.ErrDuplicatedKey on unique
// constraint violations regardless of driver.
func ConfigDB() (*gorm.DB, error) {
	dsn := os.Getenv("DB")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Specialization{},
		&models.DoctorProfile{},
		&models.PatientProfile{},
		&models.PasswordResetOTP{},
		&models.Appointment{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// EnsureAdmin seeds the admin account from ADMIN_EMAIL/ADMIN_PASSWORD. The
// register endpoint refuses role=admin, so this is the only way an admin user
// comes into existence. The User BeforeSave hook sets the staff/superuser
// flags.
func EnsureAdmin(db *gorm.DB, log zerolog.Logger) error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return nil
	}

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	admin := models.User{
		Username: "admin",
		Email:    email,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("seeded admin user")
	return nil
}

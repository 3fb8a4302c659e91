package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"clinic-connect/authentication"
	"clinic-connect/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// UserController owns registration, login, token lifecycle and user
// management endpoints.
type UserController struct {
	db       *gorm.DB
	rdb      *redis.Client
	log      zerolog.Logger
	validate *validator.Validate
}

func NewUserController(db *gorm.DB, rdb *redis.Client, log zerolog.Logger) *UserController {
	return &UserController{db: db, rdb: rdb, log: log, validate: validator.New()}
}

type DoctorProfileInput struct {
	LicenseNumber   string   `json:"license_number" binding:"required"`
	Specializations []string `json:"specializations"`
	YearsExperience int      `json:"years_experience" validate:"gte=0"`
	ClinicName      string   `json:"clinic_name"`
	ClinicAddress   string   `json:"clinic_address"`
}

type PatientProfileInput struct {
	InsuranceDetails string `json:"insurance_details"`
	MedicalHistory   string `json:"medical_history"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty,numeric"`
}

type RegisterInput struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Phone        string `json:"phone" validate:"omitempty,numeric"`
	FullName     string `json:"fullname"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"date_of_birth"`
	Address      string `json:"address"`
	Bio          string `json:"bio"`
	ProfilePhoto string `json:"profile_photo"`
	Role         string `json:"role" binding:"required"`

	DoctorProfile  *DoctorProfileInput  `json:"doctor_profile"`
	PatientProfile *PatientProfileInput `json:"patient_profile"`
}

// Register creates a user plus its role profile as one transaction. If any
// part fails the whole registration rolls back and the user never persists.
func (uc *UserController) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}
	if input.Role != models.RoleDoctor && input.Role != models.RolePatient {
		validationError(c, "Role must be 'doctor' or 'patient'.", nil)
		return
	}
	if err := uc.validate.Struct(&input); err != nil {
		validationError(c, "Invalid input", err.Error())
		return
	}
	if input.Role == models.RoleDoctor && input.DoctorProfile == nil {
		validationError(c, "doctor_profile is required when registering a doctor.", nil)
		return
	}

	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		Role:         input.Role,
		FullName:     input.FullName,
		Gender:       input.Gender,
		DateOfBirth:  input.DateOfBirth,
		Address:      input.Address,
		Bio:          input.Bio,
		ProfilePhoto: input.ProfilePhoto,
		IsActive:     true,
	}
	if input.Phone != "" {
		phone := input.Phone
		user.Phone = &phone
	}
	if err := user.SetPassword(input.Password); err != nil {
		uc.log.Error().Err(err).Msg("failed to hash password")
		internalError(c)
		return
	}

	err := uc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		switch user.Role {
		case models.RoleDoctor:
			profile := models.DoctorProfile{
				UserID:          user.ID,
				LicenseNumber:   input.DoctorProfile.LicenseNumber,
				YearsExperience: input.DoctorProfile.YearsExperience,
				ClinicName:      input.DoctorProfile.ClinicName,
				ClinicAddress:   input.DoctorProfile.ClinicAddress,
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			for _, name := range input.DoctorProfile.Specializations {
				spec, err := getOrCreateSpecialization(tx, name)
				if err != nil {
					return err
				}
				if spec == nil {
					continue
				}
				if err := tx.Model(&profile).Association("Specializations").Append(spec); err != nil {
					return err
				}
			}
		case models.RolePatient:
			profile := models.PatientProfile{UserID: user.ID}
			if input.PatientProfile != nil {
				profile.InsuranceDetails = input.PatientProfile.InsuranceDetails
				profile.MedicalHistory = input.PatientProfile.MedicalHistory
				profile.EmergencyContact = input.PatientProfile.EmergencyContact
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			validationError(c, "Email, phone or license number already in use.", nil)
			return
		}
		uc.log.Error().Err(err).Str("email", input.Email).Msg("registration failed")
		internalError(c)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully.",
		"user_id":  user.ID,
		"role":     user.Role,
		"username": user.Username,
	})
}

// getOrCreateSpecialization resolves a specialization by trimmed,
// case-sensitive name, creating it when missing. Empty names are skipped.
func getOrCreateSpecialization(tx *gorm.DB, name string) (*models.Specialization, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	var spec models.Specialization
	err := tx.Where("name = ?", name).First(&spec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		spec = models.Specialization{Name: name}
		if err := tx.Create(&spec).Error; err != nil {
			return nil, err
		}
		return &spec, nil
	}
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates by email and password and returns an access/refresh
// token pair plus the user details.
func (uc *UserController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	var user models.User
	if err := uc.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		validationError(c, "Invalid email or password.", nil)
		return
	}
	if err := user.CheckPassword(input.Password); err != nil {
		validationError(c, "Invalid email or password.", nil)
		return
	}
	if !user.IsActive {
		validationError(c, "This account is inactive.", nil)
		return
	}

	access, refresh, err := authentication.GenerateTokenPair(user.ID, user.Role)
	if err != nil {
		uc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to generate tokens")
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful.",
		"tokens":  gin.H{"access": access, "refresh": refresh},
		"user":    userDetails(&user),
	})
}

// Refresh exchanges a valid refresh token for a new access token.
func (uc *UserController) Refresh(c *gin.Context) {
	var input struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	claims, err := authentication.ParseToken(input.Refresh)
	if err != nil || claims.Type != authentication.TokenTypeRefresh {
		validationError(c, "Invalid refresh token.", nil)
		return
	}

	var user models.User
	if err := uc.db.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		validationError(c, "Invalid refresh token.", nil)
		return
	}

	access, err := authentication.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		uc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to generate access token")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// Logout revokes the caller's access token until its natural expiry.
func (uc *UserController) Logout(c *gin.Context) {
	if uc.rdb != nil {
		tokenID := c.GetString(authentication.CtxTokenID)
		if exp, ok := c.Get(authentication.CtxTokenExp); ok {
			if expiresAt, ok := exp.(time.Time); ok {
				ttl := time.Until(expiresAt)
				if err := authentication.RevokeToken(c.Request.Context(), uc.rdb, tokenID, ttl); err != nil {
					uc.log.Warn().Err(err).Msg("failed to revoke token")
				}
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "You are successfully logged out"})
}

// Profile returns the caller's details including the role profile.
func (uc *UserController) Profile(c *gin.Context) {
	userID := c.GetUint(authentication.CtxUserID)

	var user models.User
	err := uc.db.Preload("DoctorProfile.Specializations").Preload("PatientProfile").First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundError(c, "User")
			return
		}
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": userDetails(&user)})
}

type DoctorProfileUpdateInput struct {
	LicenseNumber   *string   `json:"license_number"`
	Specializations *[]string `json:"specializations"`
	YearsExperience *int      `json:"years_experience" validate:"omitempty,gte=0"`
	ClinicName      *string   `json:"clinic_name"`
	ClinicAddress   *string   `json:"clinic_address"`
}

type PatientProfileUpdateInput struct {
	InsuranceDetails *string `json:"insurance_details"`
	MedicalHistory   *string `json:"medical_history"`
	EmergencyContact *string `json:"emergency_contact" validate:"omitempty,numeric"`
}

type UpdateUserInput struct {
	Username     *string `json:"username"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,numeric"`
	FullName     *string `json:"fullname"`
	Gender       *string `json:"gender"`
	DateOfBirth  *string `json:"date_of_birth"`
	Address      *string `json:"address"`
	Bio          *string `json:"bio"`
	ProfilePhoto *string `json:"profile_photo"`

	DoctorProfile  *DoctorProfileUpdateInput  `json:"doctor_profile"`
	PatientProfile *PatientProfileUpdateInput `json:"patient_profile"`
}

// UpdateUser applies a partial or full update to the caller's own record and
// role profile. Password changes go through the change-password endpoint.
func (uc *UserController) UpdateUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		validationError(c, "Invalid user id", nil)
		return
	}

	var user models.User
	if err := uc.db.First(&user, uint(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			notFoundError(c, "User")
			return
		}
		internalError(c)
		return
	}

	if c.GetUint(authentication.CtxUserID) != user.ID {
		authorizationError(c, "You do not have permission to update this user.")
		return
	}

	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}
	if err := uc.validate.Struct(&input); err != nil {
		validationError(c, "Invalid input", err.Error())
		return
	}

	err = uc.db.Transaction(func(tx *gorm.DB) error {
		applyString := func(dst *string, src *string) {
			if src != nil {
				*dst = *src
			}
		}
		applyString(&user.Username, input.Username)
		applyString(&user.Email, input.Email)
		applyString(&user.FullName, input.FullName)
		applyString(&user.Gender, input.Gender)
		applyString(&user.DateOfBirth, input.DateOfBirth)
		applyString(&user.Address, input.Address)
		applyString(&user.Bio, input.Bio)
		applyString(&user.ProfilePhoto, input.ProfilePhoto)
		if input.Phone != nil {
			if *input.Phone == "" {
				user.Phone = nil
			} else {
				user.Phone = input.Phone
			}
		}
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if input.DoctorProfile != nil && user.Role == models.RoleDoctor {
			var profile models.DoctorProfile
			if err := tx.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
				return err
			}
			applyString(&profile.LicenseNumber, input.DoctorProfile.LicenseNumber)
			applyString(&profile.ClinicName, input.DoctorProfile.ClinicName)
			applyString(&profile.ClinicAddress, input.DoctorProfile.ClinicAddress)
			if input.DoctorProfile.YearsExperience != nil {
				profile.YearsExperience = *input.DoctorProfile.YearsExperience
			}
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
			if input.DoctorProfile.Specializations != nil {
				var specs []models.Specialization
				for _, name := range *input.DoctorProfile.Specializations {
					spec, err := getOrCreateSpecialization(tx, name)
					if err != nil {
						return err
					}
					if spec != nil {
						specs = append(specs, *spec)
					}
				}
				if err := tx.Model(&profile).Association("Specializations").Replace(specs); err != nil {
					return err
				}
			}
		}

		if input.PatientProfile != nil && user.Role == models.RolePatient {
			var profile models.PatientProfile
			if err := tx.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
				return err
			}
			applyString(&profile.InsuranceDetails, input.PatientProfile.InsuranceDetails)
			applyString(&profile.MedicalHistory, input.PatientProfile.MedicalHistory)
			applyString(&profile.EmergencyContact, input.PatientProfile.EmergencyContact)
			if err := tx.Save(&profile).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			validationError(c, "Email, phone or license number already in use.", nil)
			return
		}
		uc.log.Error().Err(err).Uint("user_id", user.ID).Msg("user update failed")
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "User updated successfully.",
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"fullname": user.FullName,
	})
}

// ListDoctors returns the doctors with their profiles, optionally filtered by
// the doctor_id query parameter.
func (uc *UserController) ListDoctors(c *gin.Context) {
	query := uc.db.Where("role = ?", models.RoleDoctor).
		Preload("DoctorProfile.Specializations")
	if id := c.Query("doctor_id"); id != "" {
		query = query.Where("id = ?", id)
	}

	var doctors []models.User
	if err := query.Find(&doctors).Error; err != nil {
		uc.log.Error().Err(err).Msg("failed to list doctors")
		internalError(c)
		return
	}

	details := make([]gin.H, 0, len(doctors))
	for i := range doctors {
		details = append(details, userDetails(&doctors[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": details})
}

// ListSpecializations returns every known specialization.
func (uc *UserController) ListSpecializations(c *gin.Context) {
	var specs []models.Specialization
	if err := uc.db.Order("name").Find(&specs).Error; err != nil {
		uc.log.Error().Err(err).Msg("failed to list specializations")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": specs})
}

func userDetails(user *models.User) gin.H {
	details := gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"role":          user.Role,
		"phone":         user.Phone,
		"fullname":      user.FullName,
		"gender":        user.Gender,
		"date_of_birth": user.DateOfBirth,
		"address":       user.Address,
		"bio":           user.Bio,
		"profile_photo": user.ProfilePhoto,
	}
	if user.DoctorProfile != nil {
		details["doctor_profile"] = user.DoctorProfile
	}
	if user.PatientProfile != nil {
		details["patient_profile"] = user.PatientProfile
	}
	return details
}

package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode"

	"clinic-connect/authentication"
	"clinic-connect/models"
	"clinic-connect/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// passwordSymbols is the punctuation set accepted by the strength policy.
const passwordSymbols = `!@#$%^&*()_+-=[]{};:'",<>./?`

// PasswordController owns the change-password and OTP-based reset endpoints.
type PasswordController struct {
	db     *gorm.DB
	log    zerolog.Logger
	mailer services.Mailer
	now    func() time.Time
}

func NewPasswordController(db *gorm.DB, log zerolog.Logger, mailer services.Mailer) *PasswordController {
	return &PasswordController{db: db, log: log, mailer: mailer, now: time.Now}
}

// passwordPolicyViolations returns one message per failed strength rule.
func passwordPolicyViolations(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long.")
	}
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	if !hasUpper {
		problems = append(problems, "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		problems = append(problems, "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		problems = append(problems, "Password must contain at least one digit.")
	}
	if !hasSymbol {
		problems = append(problems, "Password must contain at least one special character.")
	}
	return problems
}

type ChangePasswordInput struct {
	OldPassword     string `json:"old_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// ChangePassword verifies the old password and applies the strength policy
// before storing the new hash.
func (pc *PasswordController) ChangePassword(c *gin.Context) {
	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	if problems := passwordPolicyViolations(input.NewPassword); len(problems) > 0 {
		validationError(c, "New password does not meet the requirements.", problems)
		return
	}
	if input.NewPassword != input.ConfirmPassword {
		validationError(c, "New password and confirm password do not match.", nil)
		return
	}

	var user models.User
	if err := pc.db.First(&user, c.GetUint(authentication.CtxUserID)).Error; err != nil {
		notFoundError(c, "User")
		return
	}
	if err := user.CheckPassword(input.OldPassword); err != nil {
		validationError(c, "Old password is incorrect.", nil)
		return
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		pc.log.Error().Err(err).Msg("failed to hash password")
		internalError(c)
		return
	}
	if err := pc.db.Save(&user).Error; err != nil {
		pc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to store new password")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully."})
}

// RequestPasswordResetOTP creates or regenerates the pending OTP for the
// account and mails the code. Note that the error for an unknown email leaks
// account existence; kept for parity with the upstream behavior.
func (pc *PasswordController) RequestPasswordResetOTP(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	var user models.User
	if err := pc.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		validationError(c, "User with this email does not exist.", nil)
		return
	}

	code, err := models.GenerateOTPCode()
	if err != nil {
		pc.log.Error().Err(err).Msg("failed to generate OTP code")
		internalError(c)
		return
	}

	var otp models.PasswordResetOTP
	err = pc.db.Where("user_id = ? AND is_verified = ?", user.ID, false).First(&otp).Error
	switch {
	case err == nil:
		// Pending code exists: reissue it with a fresh creation time.
		updates := map[string]interface{}{"code": code, "created_at": pc.now()}
		if err := pc.db.Model(&otp).Updates(updates).Error; err != nil {
			pc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to regenerate OTP")
			internalError(c)
			return
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		otp = models.PasswordResetOTP{UserID: user.ID, Code: code, CreatedAt: pc.now()}
		if err := pc.db.Create(&otp).Error; err != nil {
			pc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to create OTP")
			internalError(c)
			return
		}
	default:
		internalError(c)
		return
	}

	if err := pc.mailer.SendOTP(user.Email, code); err != nil {
		pc.log.Error().Err(err).Uint("user_id", user.ID).Msg("failed to send OTP email")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OTP sent to email."})
}

type ResetPasswordInput struct {
	Email       string `json:"email" binding:"required,email"`
	OTP         string `json:"otp" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ResetPassword consumes an unverified, unexpired OTP and stores the new
// password. Codes are single use: once verified they never match again.
func (pc *PasswordController) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "Invalid request body", err.Error())
		return
	}

	var user models.User
	if err := pc.db.Where("email = ?", input.Email).First(&user).Error; err != nil {
		validationError(c, "Invalid OTP.", nil)
		return
	}

	var otp models.PasswordResetOTP
	err := pc.db.Where("user_id = ? AND code = ? AND is_verified = ?", user.ID, input.OTP, false).First(&otp).Error
	if err != nil {
		validationError(c, "Invalid OTP.", nil)
		return
	}
	if otp.Expired(pc.now()) {
		validationError(c, "OTP has expired.", nil)
		return
	}

	// Resets meet the same strength policy as the change-password path.
	if problems := passwordPolicyViolations(input.NewPassword); len(problems) > 0 {
		validationError(c, "New password does not meet the requirements.", problems)
		return
	}

	if err := user.SetPassword(input.NewPassword); err != nil {
		pc.log.Error().Err(err).Msg("failed to hash password")
		internalError(c)
		return
	}
	err = pc.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return err
		}
		return tx.Model(&otp).Update("is_verified", true).Error
	})
	if err != nil {
		pc.log.Error().Err(err).Uint("user_id", user.ID).Msg("password reset failed")
		internalError(c)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully."})
}

package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// OTPLifetime is how long a password reset code stays valid after creation.
const OTPLifetime = 10 * time.Minute

// PasswordResetOTP is a single-use 6-digit code bound to a user. Expiry is
// derived from CreatedAt rather than stored.
type PasswordResetOTP struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"index;not null" json:"user_id"`
	Code       string    `gorm:"size:6;not null" json:"-"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`

	User User `json:"-"`
}

// GenerateOTPCode returns a fresh random 6-digit numeric code.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Expired reports whether the code is older than OTPLifetime at the given
// instant. A code at exactly OTPLifetime old is still accepted.
func (otp *PasswordResetOTP) Expired(now time.Time) bool {
	return now.After(otp.CreatedAt.Add(OTPLifetime))
}

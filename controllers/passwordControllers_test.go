package controllers_test

import (
	"strings"
	"testing"
	"time"

	"clinic-connect/models"
)

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerPatient(t, "chg", "chg@example.com", "")
	token := accessToken(t, userID, "patient")

	// Wrong old password.
	w := env.do(t, "POST", "/api/users/change-password", map[string]string{
		"old_password":     "Nope1234!",
		"new_password":     "NewSecret1!",
		"confirm_password": "NewSecret1!",
	}, token)
	if w.Code != 400 {
		t.Fatalf("expected 400 for wrong old password, got %d", w.Code)
	}

	// Mismatched confirmation.
	w = env.do(t, "POST", "/api/users/change-password", map[string]string{
		"old_password":     "Initial1!",
		"new_password":     "NewSecret1!",
		"confirm_password": "Different1!",
	}, token)
	if w.Code != 400 {
		t.Fatalf("expected 400 for mismatched confirmation, got %d", w.Code)
	}

	// Successful change, then the old password stops working.
	w = env.do(t, "POST", "/api/users/change-password", map[string]string{
		"old_password":     "Initial1!",
		"new_password":     "NewSecret1!",
		"confirm_password": "NewSecret1!",
	}, token)
	if w.Code != 200 {
		t.Fatalf("change password: got %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, "POST", "/api/users/login", map[string]string{
		"email": "chg@example.com", "password": "Initial1!",
	}, "")
	if w.Code != 400 {
		t.Fatalf("old password should no longer work, got %d", w.Code)
	}
	w = env.do(t, "POST", "/api/users/login", map[string]string{
		"email": "chg@example.com", "password": "NewSecret1!",
	}, "")
	if w.Code != 200 {
		t.Fatalf("new password should work, got %d", w.Code)
	}
}

func TestChangePasswordWeakPasswordMessages(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerPatient(t, "weak", "weak@example.com", "")
	token := accessToken(t, userID, "patient")

	w := env.do(t, "POST", "/api/users/change-password", map[string]string{
		"old_password":     "Initial1!",
		"new_password":     "abcdefgh",
		"confirm_password": "abcdefgh",
	}, token)
	if w.Code != 400 {
		t.Fatalf("expected 400 for weak password, got %d", w.Code)
	}
	body := w.Body.String()
	for _, fragment := range []string{"uppercase letter", "digit", "special character"} {
		if !strings.Contains(body, fragment) {
			t.Fatalf("missing %q in violation messages: %s", fragment, body)
		}
	}
	if strings.Contains(body, "lowercase letter") {
		t.Fatalf("lowercase rule should not be reported for %q: %s", "abcdefgh", body)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	env := newTestEnv(t)
	env.registerPatient(t, "reset", "reset@example.com", "")

	// Unknown email is rejected.
	w := env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "ghost@example.com",
	}, "")
	if w.Code != 400 {
		t.Fatalf("expected 400 for unknown email, got %d", w.Code)
	}

	w = env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "reset@example.com",
	}, "")
	if w.Code != 200 {
		t.Fatalf("request reset: got %d, body %s", w.Code, w.Body.String())
	}
	code := env.mailer.lastOTP("reset@example.com")
	if len(code) != 6 {
		t.Fatalf("expected 6-digit OTP in mail, got %q", code)
	}

	// A second request regenerates the pending code instead of stacking.
	w = env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "reset@example.com",
	}, "")
	if w.Code != 200 {
		t.Fatalf("second request reset: got %d", w.Code)
	}
	code = env.mailer.lastOTP("reset@example.com")
	var count int64
	env.db.Model(&models.PasswordResetOTP{}).Where("is_verified = ?", false).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single pending OTP, got %d", count)
	}

	// Wrong code.
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "reset@example.com",
		"otp":          "000000",
		"new_password": "Reseted1!",
	}, "")
	if w.Code != 400 || !strings.Contains(w.Body.String(), "Invalid OTP") {
		t.Fatalf("expected invalid OTP rejection, got %d: %s", w.Code, w.Body.String())
	}

	// Correct code resets the password.
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "reset@example.com",
		"otp":          code,
		"new_password": "Reseted1!",
	}, "")
	if w.Code != 200 {
		t.Fatalf("reset: got %d, body %s", w.Code, w.Body.String())
	}

	w = env.do(t, "POST", "/api/users/login", map[string]string{
		"email": "reset@example.com", "password": "Reseted1!",
	}, "")
	if w.Code != 200 {
		t.Fatalf("login with reset password: got %d", w.Code)
	}

	// Codes are single use.
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "reset@example.com",
		"otp":          code,
		"new_password": "Another1!",
	}, "")
	if w.Code != 400 {
		t.Fatalf("expected 400 reusing a verified OTP, got %d", w.Code)
	}
}

func TestPasswordResetExpiry(t *testing.T) {
	env := newTestEnv(t)
	env.registerPatient(t, "exp", "exp@example.com", "")

	w := env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "exp@example.com",
	}, "")
	if w.Code != 200 {
		t.Fatalf("request reset: got %d", w.Code)
	}
	code := env.mailer.lastOTP("exp@example.com")

	// Just inside the window: accepted.
	env.db.Model(&models.PasswordResetOTP{}).Where("is_verified = ?", false).
		Update("created_at", time.Now().Add(-models.OTPLifetime+time.Second))
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "exp@example.com",
		"otp":          code,
		"new_password": "Reseted1!",
	}, "")
	if w.Code != 200 {
		t.Fatalf("reset inside window: got %d, body %s", w.Code, w.Body.String())
	}

	// Just past the window: expired.
	w = env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "exp@example.com",
	}, "")
	if w.Code != 200 {
		t.Fatalf("second request reset: got %d", w.Code)
	}
	code = env.mailer.lastOTP("exp@example.com")
	env.db.Model(&models.PasswordResetOTP{}).Where("is_verified = ?", false).
		Update("created_at", time.Now().Add(-models.OTPLifetime-time.Second))
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "exp@example.com",
		"otp":          code,
		"new_password": "Another1!",
	}, "")
	if w.Code != 400 || !strings.Contains(w.Body.String(), "expired") {
		t.Fatalf("expected expired OTP rejection, got %d: %s", w.Code, w.Body.String())
	}
}

func TestResetPasswordAppliesStrengthPolicy(t *testing.T) {
	env := newTestEnv(t)
	env.registerPatient(t, "pol", "pol@example.com", "")

	w := env.do(t, "POST", "/api/users/request-password-reset", map[string]string{
		"email": "pol@example.com",
	}, "")
	if w.Code != 200 {
		t.Fatalf("request reset: got %d", w.Code)
	}
	code := env.mailer.lastOTP("pol@example.com")

	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "pol@example.com",
		"otp":          code,
		"new_password": "weakweak",
	}, "")
	if w.Code != 400 {
		t.Fatalf("expected 400 for weak reset password, got %d", w.Code)
	}

	// The OTP survives the failed attempt and still works with a strong one.
	w = env.do(t, "PUT", "/api/users/reset-password", map[string]string{
		"email":        "pol@example.com",
		"otp":          code,
		"new_password": "Strong1!pass",
	}, "")
	if w.Code != 200 {
		t.Fatalf("reset after weak attempt: got %d, body %s", w.Code, w.Body.String())
	}
}

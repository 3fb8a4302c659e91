package models

import (
	"testing"
	"time"
)

func TestGenerateOTPCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GenerateOTPCode()
		if err != nil {
			t.Fatalf("GenerateOTPCode: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("expected 6 digits, got %q", code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("non-digit in code %q", code)
			}
		}
	}
}

func TestOTPExpired(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	otp := PasswordResetOTP{CreatedAt: created}

	if otp.Expired(created.Add(OTPLifetime - time.Second)) {
		t.Error("code just inside the window should be valid")
	}
	if otp.Expired(created.Add(OTPLifetime)) {
		t.Error("code at exactly the lifetime should still be valid")
	}
	if !otp.Expired(created.Add(OTPLifetime + time.Second)) {
		t.Error("code past the lifetime should be expired")
	}
}

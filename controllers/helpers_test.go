package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"clinic-connect/authentication"
	"clinic-connect/models"
	"clinic-connect/routes"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	mu            sync.Mutex
	otps          map[string]string
	confirmations int
}

func (f *fakeMailer) SendOTP(to, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.otps == nil {
		f.otps = make(map[string]string)
	}
	f.otps[to] = code
	return nil
}

func (f *fakeMailer) SendAppointmentConfirmation(to, subject, body, attachmentName string, attachment []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.confirmations++
	return nil
}

func (f *fakeMailer) lastOTP(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.otps[email]
}

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	mailer *fakeMailer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("access sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Specialization{},
		&models.DoctorProfile{},
		&models.PatientProfile{},
		&models.PasswordResetOTP{},
		&models.Appointment{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	mailer := &fakeMailer{}
	r := gin.New()
	routes.ConfigRoutes(r, db, nil, zerolog.Nop(), mailer, nil)
	return &testEnv{router: r, db: db, mailer: mailer}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func (e *testEnv) registerPatient(t *testing.T, username, email, phone string) uint {
	t.Helper()
	input := map[string]interface{}{
		"username": username,
		"email":    email,
		"password": "Initial1!",
		"role":     "patient",
		"fullname": username,
	}
	if phone != "" {
		input["phone"] = phone
	}
	w := e.do(t, "POST", "/api/users/register", input, "")
	if w.Code != 201 {
		t.Fatalf("register patient %s: got %d, body %s", email, w.Code, w.Body.String())
	}
	return uint(decodeBody(t, w)["user_id"].(float64))
}

func (e *testEnv) registerDoctor(t *testing.T, username, email, license string, specs []string) uint {
	t.Helper()
	input := map[string]interface{}{
		"username": username,
		"email":    email,
		"password": "Initial1!",
		"role":     "doctor",
		"fullname": username,
		"doctor_profile": map[string]interface{}{
			"license_number":   license,
			"specializations":  specs,
			"years_experience": 5,
		},
	}
	w := e.do(t, "POST", "/api/users/register", input, "")
	if w.Code != 201 {
		t.Fatalf("register doctor %s: got %d, body %s", email, w.Code, w.Body.String())
	}
	return uint(decodeBody(t, w)["user_id"].(float64))
}

func accessToken(t *testing.T, userID uint, role string) string {
	t.Helper()
	access, _, err := authentication.GenerateTokenPair(userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return access
}

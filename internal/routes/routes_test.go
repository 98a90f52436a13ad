package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/config"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/database"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	cfg := &config.Config{
		DBDriver:         config.DriverSQLite,
		DBPath:           ":memory:",
		JWTSecret:        "routes-test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
	}
	db, err := database.Connect(cfg)
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	bookings := services.NewBookingService(db)
	h := Handlers{
		Auth:         handlers.NewAuthHandler(services.NewAuthService(db, cfg, services.NewLoginThrottle(60, 20))),
		Health:       handlers.NewHealthHandler(db),
		Availability: handlers.NewAvailabilityHandler(services.NewAvailabilityService(db)),
		Appointments: handlers.NewAppointmentHandler(bookings, services.NewCalendarService(bookings)),
	}

	app := fiber.New()
	app.Use(requestid.New())
	Setup(app, cfg, h, Limits{})
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func expect(t *testing.T, resp *http.Response, body []byte, status int) {
	t.Helper()
	if resp.StatusCode != status {
		t.Fatalf("expected %d, got %d: %s", status, resp.StatusCode, body)
	}
}

func expectCode(t *testing.T, resp *http.Response, body []byte, status int, code string) {
	t.Helper()
	expect(t, resp, body, status)
	var e dto.ErrorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		t.Fatalf("error body: %v", err)
	}
	if !e.Error || e.Code != code {
		t.Fatalf("expected code %q, got %+v", code, e)
	}
}

func register(t *testing.T, app *fiber.App, email, role string) dto.AuthResponse {
	t.Helper()
	resp, body := do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: email, Password: "password123", Role: role,
	})
	expect(t, resp, body, http.StatusCreated)
	var out dto.AuthResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestBookingFlow(t *testing.T) {
	app := newTestApp(t)

	prof := register(t, app, "prof@uni.edu", "professor")
	alice := register(t, app, "alice@uni.edu", "student")
	bob := register(t, app, "bob@uni.edu", "student")

	resp, body := do(t, app, http.MethodPost, "/api/availability", prof.AccessToken, dto.CreateSlotRequest{
		StartTime: "2030-03-16T10:00:00", EndTime: "2030-03-16T11:00:00",
	})
	expect(t, resp, body, http.StatusCreated)
	var slot dto.SlotResponse
	json.Unmarshal(body, &slot)
	if !slot.StartTime.Equal(time.Date(2030, 3, 16, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("zone-less start should be UTC, got %v", slot.StartTime)
	}

	resp, body = do(t, app, http.MethodGet, "/api/availability/"+prof.User.ID.String(), bob.AccessToken, nil)
	expect(t, resp, body, http.StatusOK)
	var slots []dto.SlotResponse
	json.Unmarshal(body, &slots)
	if len(slots) != 1 || slots[0].ID != slot.ID {
		t.Fatalf("unexpected slots: %s", body)
	}

	book := dto.BookAppointmentRequest{ProfessorID: prof.User.ID.String(), SlotID: slot.ID.String()}
	resp, body = do(t, app, http.MethodPost, "/api/appointments", alice.AccessToken, book)
	expect(t, resp, body, http.StatusCreated)
	var appt dto.AppointmentResponse
	json.Unmarshal(body, &appt)
	if appt.Status != "booked" || appt.StudentID != alice.User.ID {
		t.Fatalf("unexpected appointment: %s", body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/appointments", bob.AccessToken, book)
	expectCode(t, resp, body, http.StatusConflict, "slot_unavailable")

	resp, body = do(t, app, http.MethodGet, "/api/professor/appointments", prof.AccessToken, nil)
	expect(t, resp, body, http.StatusOK)
	if !strings.Contains(string(body), "alice@uni.edu") {
		t.Errorf("professor view should show the student: %s", body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/appointments/calendar.ics", alice.AccessToken, nil)
	expect(t, resp, body, http.StatusOK)
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Errorf("content type: %q", resp.Header.Get("Content-Type"))
	}
	if strings.Count(string(body), "BEGIN:VEVENT") != 1 {
		t.Errorf("expected one event:\n%s", body)
	}

	resp, body = do(t, app, http.MethodDelete, "/api/appointments/"+appt.ID.String(), bob.AccessToken, nil)
	expectCode(t, resp, body, http.StatusForbidden, "forbidden")

	resp, body = do(t, app, http.MethodDelete, "/api/appointments/"+appt.ID.String(), alice.AccessToken, nil)
	expect(t, resp, body, http.StatusOK)

	resp, body = do(t, app, http.MethodDelete, "/api/appointments/"+appt.ID.String(), alice.AccessToken, nil)
	expectCode(t, resp, body, http.StatusConflict, "already_cancelled")

	resp, body = do(t, app, http.MethodGet, "/api/appointments", alice.AccessToken, nil)
	expect(t, resp, body, http.StatusOK)
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("expected empty list, got %s", body)
	}
}

func TestAccessControl(t *testing.T) {
	app := newTestApp(t)
	prof := register(t, app, "p@uni.edu", "professor")
	stud := register(t, app, "s@uni.edu", "student")

	slotReq := dto.CreateSlotRequest{StartTime: "2030-03-16T10:00:00Z", EndTime: "2030-03-16T11:00:00Z"}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{"no token", http.MethodGet, "/api/appointments", "", nil, http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/appointments", "not-a-jwt", nil, http.StatusUnauthorized},
		{"student adds slot", http.MethodPost, "/api/availability", stud.AccessToken, slotReq, http.StatusForbidden},
		{"student adds bad slot", http.MethodPost, "/api/availability", stud.AccessToken, dto.CreateSlotRequest{StartTime: "nope"}, http.StatusForbidden},
		{"professor books", http.MethodPost, "/api/appointments", prof.AccessToken, dto.BookAppointmentRequest{ProfessorID: prof.User.ID.String(), SlotID: prof.User.ID.String()}, http.StatusForbidden},
		{"professor lists student view", http.MethodGet, "/api/appointments", prof.AccessToken, nil, http.StatusForbidden},
		{"student lists professor view", http.MethodGet, "/api/professor/appointments", stud.AccessToken, nil, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, app, tt.method, tt.path, tt.token, tt.body)
			expect(t, resp, body, tt.status)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)
	prof := register(t, app, "p@uni.edu", "professor")
	stud := register(t, app, "s@uni.edu", "student")

	resp, body := do(t, app, http.MethodPost, "/api/availability", prof.AccessToken, dto.CreateSlotRequest{
		StartTime: "2030-03-16 11:00:00", EndTime: "2030-03-16 10:00:00",
	})
	expectCode(t, resp, body, http.StatusBadRequest, "invalid_range")

	resp, body = do(t, app, http.MethodPost, "/api/availability", prof.AccessToken, dto.CreateSlotRequest{
		StartTime: "16/03/2030", EndTime: "2030-03-16 10:00:00",
	})
	expectCode(t, resp, body, http.StatusBadRequest, "validation_error")

	resp, body = do(t, app, http.MethodPost, "/api/availability", prof.AccessToken, dto.CreateSlotRequest{})
	expectCode(t, resp, body, http.StatusBadRequest, "validation_error")

	resp, body = do(t, app, http.MethodPost, "/api/appointments", stud.AccessToken, dto.BookAppointmentRequest{})
	expectCode(t, resp, body, http.StatusBadRequest, "validation_error")

	resp, body = do(t, app, http.MethodPost, "/api/appointments", stud.AccessToken, dto.BookAppointmentRequest{ProfessorID: "abc", SlotID: "def"})
	expectCode(t, resp, body, http.StatusBadRequest, "invalid_reference")

	resp, body = do(t, app, http.MethodDelete, "/api/appointments/not-a-uuid", stud.AccessToken, nil)
	expectCode(t, resp, body, http.StatusNotFound, "not_found")

	resp, body = do(t, app, http.MethodGet, "/api/availability/not-a-uuid", stud.AccessToken, nil)
	expectCode(t, resp, body, http.StatusBadRequest, "validation_error")

	resp, body = do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Email: "P@uni.edu", Password: "password123", Role: "student"})
	expectCode(t, resp, body, http.StatusConflict, "email_taken")

	resp, body = do(t, app, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{Email: "p@uni.edu", Password: "wrong-password"})
	expectCode(t, resp, body, http.StatusUnauthorized, "invalid_credentials")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, http.MethodGet, "/api/health", "", nil)
	expect(t, resp, body, http.StatusOK)
	var h dto.HealthResponse
	json.Unmarshal(body, &h)
	if h.Status != "ok" || h.DB != "ok" {
		t.Errorf("unexpected health: %+v", h)
	}
}

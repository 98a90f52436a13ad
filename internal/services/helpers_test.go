package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/config"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/database"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func testConfig() *config.Config {
	return &config.Config{
		DBDriver:         config.DriverSQLite,
		DBPath:           ":memory:",
		JWTSecret:        "test-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: time.Hour,
		LoginRatePerMin:  5,
		LoginBurst:       5,
	}
}

// newTestDB returns a fresh migrated in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(testConfig())
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// createUser inserts a user directly, skipping bcrypt's cost for speed.
func createUser(t *testing.T, db *gorm.DB, role models.Role) identity.Caller {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := models.User{
		ID:       uuid.New(),
		Email:    fmt.Sprintf("%s-%s@uni.edu", role, uuid.New().String()[:8]),
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return identity.Caller{UserID: u.ID, Role: role}
}

func addSlot(t *testing.T, svc *AvailabilityService, prof identity.Caller, start time.Time) *models.AvailabilitySlot {
	t.Helper()
	slot, err := svc.AddSlot(context.Background(), prof, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("add slot: %v", err)
	}
	return slot
}

func at(hour int) time.Time {
	return time.Date(2030, 3, 16, hour, 0, 0, 0, time.UTC)
}

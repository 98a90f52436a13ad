package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
)

func TestAddSlot(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(db)
	prof := createUser(t, db, models.RoleProfessor)

	loc := time.FixedZone("UTC+2", 2*60*60)
	start := time.Date(2030, 3, 16, 12, 0, 0, 0, loc)
	slot, err := svc.AddSlot(context.Background(), prof, start, start.Add(time.Hour))
	if err != nil {
		t.Fatalf("add slot: %v", err)
	}
	if slot.ID == uuid.Nil {
		t.Fatal("empty slot id")
	}
	if slot.ProfessorID != prof.UserID {
		t.Errorf("professor: got %s, want %s", slot.ProfessorID, prof.UserID)
	}
	if slot.StartTime.Location() != time.UTC || !slot.StartTime.Equal(at(10)) {
		t.Errorf("start should be stored as UTC 10:00, got %v", slot.StartTime)
	}

	slots, err := svc.ListSlotsForProfessor(context.Background(), prof.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 1 || slots[0].ID != slot.ID {
		t.Fatalf("expected the new slot to be listed, got %+v", slots)
	}
}

func TestAddSlotValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(db)
	prof := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr error
	}{
		{"end before start", at(11), at(10), ErrInvalidRange},
		{"empty range", at(10), at(10), ErrInvalidRange},
		{"missing start", time.Time{}, at(10), ErrValidation},
		{"missing end", at(10), time.Time{}, ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddSlot(context.Background(), prof, tt.start, tt.end)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("student is forbidden even with bad input", func(t *testing.T) {
		for _, r := range [][2]time.Time{{at(10), at(11)}, {at(11), at(10)}, {{}, {}}} {
			_, err := svc.AddSlot(context.Background(), student, r[0], r[1])
			if !errors.Is(err, ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		}
	})

	slots, _ := svc.ListSlotsForProfessor(context.Background(), prof.UserID)
	if len(slots) != 0 {
		t.Errorf("failed adds must not write, found %d slots", len(slots))
	}
}

func TestListSlotsForProfessor(t *testing.T) {
	db := newTestDB(t)
	svc := NewAvailabilityService(db)
	p1 := createUser(t, db, models.RoleProfessor)
	p2 := createUser(t, db, models.RoleProfessor)

	// inserted out of order, overlapping on purpose
	addSlot(t, svc, p1, at(14))
	addSlot(t, svc, p1, at(9))
	addSlot(t, svc, p1, at(9).Add(30*time.Minute))
	addSlot(t, svc, p2, at(8))

	slots, err := svc.ListSlotsForProfessor(context.Background(), p1.UserID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].StartTime.Before(slots[i-1].StartTime) {
			t.Errorf("slots not ordered by start time: %v before %v", slots[i-1].StartTime, slots[i].StartTime)
		}
	}
	for _, s := range slots {
		if s.ProfessorID != p1.UserID {
			t.Errorf("slot %s belongs to another professor", s.ID)
		}
	}

	empty, err := svc.ListSlotsForProfessor(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("list unknown: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}
}

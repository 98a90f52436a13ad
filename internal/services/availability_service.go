package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AvailabilityService is the ledger of professor-owned time slots.
type AvailabilityService struct {
	db *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{db: db}
}

// AddSlot opens a new slot owned by the calling professor. The role check
// comes before any input validation. Overlapping slots are allowed.
func (s *AvailabilityService) AddSlot(ctx context.Context, caller identity.Caller, start, end time.Time) (*models.AvailabilitySlot, error) {
	if !caller.Is(models.RoleProfessor) {
		return nil, fmt.Errorf("%w: only professors can add availability", ErrForbidden)
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start_time and end_time are required", ErrValidation)
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	slot := models.AvailabilitySlot{
		ID:          uuid.New(),
		ProfessorID: caller.UserID,
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&slot).Error; err != nil {
		return nil, fmt.Errorf("failed to create slot: %w", err)
	}

	slog.Info("slot added", "action", "add_slot", "user_id", caller.UserID.String(), "slot_id", slot.ID.String())
	return &slot, nil
}

// ListSlotsForProfessor returns every slot of the professor ordered by start
// time. An unknown professor yields an empty list.
func (s *AvailabilityService) ListSlotsForProfessor(ctx context.Context, professorID uuid.UUID) ([]models.AvailabilitySlot, error) {
	slots := make([]models.AvailabilitySlot, 0)
	err := s.db.WithContext(ctx).
		Scopes(identity.SlotsOf(professorID)).
		Order("availability_slots.start_time ASC").
		Find(&slots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

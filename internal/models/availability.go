package models

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a window a professor has opened for booking. Slots are
// immutable once created; cancelling an appointment never touches the slot.
type AvailabilitySlot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProfessorID uuid.UUID `gorm:"type:uuid;not null;index:idx_slots_professor_start,priority:1" json:"professor_id"`
	StartTime   time.Time `gorm:"not null;index:idx_slots_professor_start,priority:2" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	Professor   *User     `gorm:"foreignKey:ProfessorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (AvailabilitySlot) TableName() string {
	return "availability_slots"
}

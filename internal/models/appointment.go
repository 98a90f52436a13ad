package models

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusBooked    AppointmentStatus = "booked"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment binds one student to one slot. booked -> cancelled is the only
// transition. At most one booked row per slot is enforced by the partial unique
// index idx_appointments_booked_slot.
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID   uuid.UUID         `gorm:"type:uuid;not null;index" json:"student_id"`
	ProfessorID uuid.UUID         `gorm:"type:uuid;not null;index" json:"professor_id"`
	SlotID      uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_appointments_booked_slot,where:status = 'booked'" json:"slot_id"`
	Status      AppointmentStatus `gorm:"size:20;not null;check:chk_appointments_status,status IN ('booked','cancelled')" json:"status"`
	CancelledAt *time.Time        `json:"cancelled_at,omitempty"`
	CancelledBy *uuid.UUID        `gorm:"type:uuid" json:"cancelled_by,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Student   *User             `gorm:"foreignKey:StudentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Professor *User             `gorm:"foreignKey:ProfessorID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	Slot      *AvailabilitySlot `gorm:"foreignKey:SlotID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

// All returns the models in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&AvailabilitySlot{},
		&Appointment{},
		&SystemLog{},
	}
}

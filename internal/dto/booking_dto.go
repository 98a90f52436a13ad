package dto

import (
	"time"

	"github.com/google/uuid"
)

// Timestamps arrive as strings so the handler can accept the zone-less
// formats older clients send alongside RFC 3339.
type CreateSlotRequest struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type SlotResponse struct {
	ID          uuid.UUID `json:"id"`
	ProfessorID uuid.UUID `json:"professor_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
}

type BookAppointmentRequest struct {
	ProfessorID string `json:"professor_id"`
	SlotID      string `json:"slot_id"`
}

type AppointmentResponse struct {
	ID          uuid.UUID  `json:"id"`
	StudentID   uuid.UUID  `json:"student_id"`
	ProfessorID uuid.UUID  `json:"professor_id"`
	SlotID      uuid.UUID  `json:"slot_id"`
	Status      string     `json:"status"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

// AppointmentListItem is an appointment joined with its slot times and the
// email of the other party.
type AppointmentListItem struct {
	ID             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	SlotID         uuid.UUID `json:"slot_id"`
	ProfessorID    uuid.UUID `json:"professor_id"`
	StudentID      uuid.UUID `json:"student_id"`
	ProfessorEmail string    `json:"professor_email,omitempty"`
	StudentEmail   string    `json:"student_email,omitempty"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
}

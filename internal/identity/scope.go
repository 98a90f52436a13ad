package identity

import (
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookedOnly filters appointments down to the active ones.
func BookedOnly(db *gorm.DB) *gorm.DB {
	return db.Where("appointments.status = ?", models.StatusBooked)
}

// OwnAppointments limits appointments to those the caller takes part in, on
// the side that matches their role.
func OwnAppointments(caller Caller) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if caller.Is(models.RoleProfessor) {
			return db.Where("appointments.professor_id = ?", caller.UserID)
		}
		return db.Where("appointments.student_id = ?", caller.UserID)
	}
}

// SlotsOf filters availability slots by owning professor.
func SlotsOf(professorID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("availability_slots.professor_id = ?", professorID)
	}
}

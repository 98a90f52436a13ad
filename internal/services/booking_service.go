package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingService turns availability slots into appointments and guards the
// one-booked-appointment-per-slot invariant.
type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// BookAppointment books slotID with professorID for the calling student.
//
// Checks run in order inside one transaction: the professor exists, the slot
// exists and belongs to that professor, the slot has no booked appointment.
// The slot row is locked for the rest of the transaction where the dialect
// supports it, and the partial unique index on booked appointments rejects
// whatever slips past, so two concurrent bookers can never both succeed.
func (s *BookingService) BookAppointment(ctx context.Context, caller identity.Caller, professorID, slotID uuid.UUID) (*models.Appointment, error) {
	if !caller.Is(models.RoleStudent) {
		return nil, fmt.Errorf("%w: only students can book appointments", ErrForbidden)
	}

	appt := models.Appointment{
		ID:          uuid.New(),
		StudentID:   caller.UserID,
		ProfessorID: professorID,
		SlotID:      slotID,
		Status:      models.StatusBooked,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var professor models.User
		if err := tx.Where("id = ? AND role = ?", professorID, models.RoleProfessor).First(&professor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: professor does not exist", ErrInvalidReference)
			}
			return fmt.Errorf("failed to look up professor: %w", err)
		}

		var slot models.AvailabilitySlot
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND professor_id = ?", slotID, professorID).
			First(&slot).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: slot does not exist or does not belong to the professor", ErrInvalidReference)
			}
			return fmt.Errorf("failed to look up slot: %w", err)
		}

		var booked int64
		if err := tx.Model(&models.Appointment{}).
			Scopes(identity.BookedOnly).
			Where("appointments.slot_id = ?", slotID).
			Count(&booked).Error; err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if booked > 0 {
			return ErrSlotUnavailable
		}

		if err := tx.Create(&appt).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrSlotUnavailable
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("appointment booked",
		"action", "book_appointment",
		"user_id", caller.UserID.String(),
		"appointment_id", appt.ID.String(),
		"slot_id", slotID.String(),
	)
	return &appt, nil
}

// CancelAppointment moves a booked appointment to cancelled. Only the student
// who booked it or the professor it is with may cancel. The row is kept.
func (s *BookingService) CancelAppointment(ctx context.Context, caller identity.Caller, appointmentID uuid.UUID) (*models.Appointment, error) {
	var appt models.Appointment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&appt, "id = ?", appointmentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: appointment does not exist", ErrNotFound)
			}
			return fmt.Errorf("failed to look up appointment: %w", err)
		}

		if appt.StudentID != caller.UserID && appt.ProfessorID != caller.UserID {
			return fmt.Errorf("%w: not a party to this appointment", ErrForbidden)
		}
		if appt.Status == models.StatusCancelled {
			return ErrAlreadyCancelled
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Appointment{}).
			Where("id = ? AND status = ?", appointmentID, models.StatusBooked).
			Updates(map[string]interface{}{
				"status":       models.StatusCancelled,
				"cancelled_at": now,
				"cancelled_by": caller.UserID,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to cancel appointment: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCancelled
		}

		appt.Status = models.StatusCancelled
		appt.CancelledAt = &now
		appt.CancelledBy = &caller.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("appointment cancelled",
		"action", "cancel_appointment",
		"user_id", caller.UserID.String(),
		"role", string(caller.Role),
		"appointment_id", appt.ID.String(),
	)
	return &appt, nil
}

// ListAppointmentsForStudent returns the calling student's booked
// appointments with slot times and professor email, earliest first.
func (s *BookingService) ListAppointmentsForStudent(ctx context.Context, caller identity.Caller) ([]dto.AppointmentListItem, error) {
	if !caller.Is(models.RoleStudent) {
		return nil, fmt.Errorf("%w: only students can view their appointments", ErrForbidden)
	}
	return s.listBooked(ctx, caller)
}

// ListAppointmentsForProfessor is the professor-side view: booked
// appointments with the professor, with student email.
func (s *BookingService) ListAppointmentsForProfessor(ctx context.Context, caller identity.Caller) ([]dto.AppointmentListItem, error) {
	if !caller.Is(models.RoleProfessor) {
		return nil, fmt.Errorf("%w: only professors can view their bookings", ErrForbidden)
	}
	return s.listBooked(ctx, caller)
}

func (s *BookingService) listBooked(ctx context.Context, caller identity.Caller) ([]dto.AppointmentListItem, error) {
	var appts []models.Appointment
	q := s.db.WithContext(ctx).
		Joins("JOIN availability_slots ON availability_slots.id = appointments.slot_id").
		Preload("Slot").
		Scopes(identity.BookedOnly, identity.OwnAppointments(caller)).
		Order("availability_slots.start_time ASC, appointments.created_at ASC")
	if caller.Is(models.RoleProfessor) {
		q = q.Preload("Student")
	} else {
		q = q.Preload("Professor")
	}
	if err := q.Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}

	items := make([]dto.AppointmentListItem, 0, len(appts))
	for _, a := range appts {
		item := dto.AppointmentListItem{
			ID:          a.ID,
			Status:      string(a.Status),
			SlotID:      a.SlotID,
			ProfessorID: a.ProfessorID,
			StudentID:   a.StudentID,
		}
		if a.Slot != nil {
			item.StartTime = a.Slot.StartTime.UTC()
			item.EndTime = a.Slot.EndTime.UTC()
		}
		if a.Professor != nil {
			item.ProfessorEmail = a.Professor.Email
		}
		if a.Student != nil {
			item.StudentEmail = a.Student.Email
		}
		items = append(items, item)
	}
	return items, nil
}

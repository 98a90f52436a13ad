package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AppointmentHandler struct {
	bookings *services.BookingService
	calendar *services.CalendarService
}

func NewAppointmentHandler(bookings *services.BookingService, calendar *services.CalendarService) *AppointmentHandler {
	return &AppointmentHandler{bookings: bookings, calendar: calendar}
}

func (h *AppointmentHandler) Book(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.BookAppointmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.ProfessorID) == "" || strings.TrimSpace(req.SlotID) == "" {
		return badRequest(c, "professor_id and slot_id are required")
	}

	// A malformed id cannot name an existing row.
	professorID, err := uuid.Parse(strings.TrimSpace(req.ProfessorID))
	if err != nil {
		return respondError(c, services.ErrInvalidReference)
	}
	slotID, err := uuid.Parse(strings.TrimSpace(req.SlotID))
	if err != nil {
		return respondError(c, services.ErrInvalidReference)
	}

	appt, err := h.bookings.BookAppointment(c.UserContext(), caller, professorID, slotID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toAppointmentResponse(appt))
}

func (h *AppointmentHandler) List(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.bookings.ListAppointmentsForStudent(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *AppointmentHandler) ProfessorList(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	items, err := h.bookings.ListAppointmentsForProfessor(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *AppointmentHandler) Cancel(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respondError(c, services.ErrNotFound)
	}

	appt, err := h.bookings.CancelAppointment(c.UserContext(), caller, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(toAppointmentResponse(appt))
}

func (h *AppointmentHandler) Calendar(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	feed, err := h.calendar.Feed(c.UserContext(), caller)
	if err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="appointments.ics"`)
	return c.SendString(feed)
}

func toAppointmentResponse(a *models.Appointment) dto.AppointmentResponse {
	return dto.AppointmentResponse{
		ID:          a.ID,
		StudentID:   a.StudentID,
		ProfessorID: a.ProfessorID,
		SlotID:      a.SlotID,
		Status:      string(a.Status),
		CancelledAt: a.CancelledAt,
	}
}

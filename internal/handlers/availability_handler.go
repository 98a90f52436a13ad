package handlers

import (
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/dto"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AvailabilityHandler struct {
	availability *services.AvailabilityService
}

func NewAvailabilityHandler(availability *services.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

func (h *AvailabilityHandler) AddSlot(c *fiber.Ctx) error {
	caller, err := identity.GetCaller(c)
	if err != nil {
		return unauthorized(c)
	}

	var req dto.CreateSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	start, startErr := parseTimestamp(req.StartTime)
	end, endErr := parseTimestamp(req.EndTime)
	if startErr != nil || endErr != nil {
		// unparseable input goes in as missing so the role check still runs first
		start, end = time.Time{}, time.Time{}
	}

	slot, err := h.availability.AddSlot(c.UserContext(), caller, start, end)
	if err != nil {
		if errors.Is(err, services.ErrValidation) && (startErr != nil || endErr != nil) {
			return badRequest(c, "start_time and end_time must be RFC 3339 or YYYY-MM-DDTHH:MM:SS")
		}
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(toSlotResponse(slot))
}

func (h *AvailabilityHandler) ListSlots(c *fiber.Ctx) error {
	professorID, err := uuid.Parse(c.Params("professorId"))
	if err != nil {
		return badRequest(c, "Invalid professor id")
	}

	slots, err := h.availability.ListSlotsForProfessor(c.UserContext(), professorID)
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		resp = append(resp, toSlotResponse(&slots[i]))
	}
	return c.JSON(resp)
}

func toSlotResponse(s *models.AvailabilitySlot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:          s.ID,
		ProfessorID: s.ProfessorID,
		StartTime:   s.StartTime.UTC(),
		EndTime:     s.EndTime.UTC(),
	}
}

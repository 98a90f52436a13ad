package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/identity"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	ics "github.com/arran4/golang-ical"
)

const calendarProductID = "-//office-hours//appointments//EN"

// CalendarService renders a caller's booked appointments as an iCalendar
// feed that calendar apps can subscribe to.
type CalendarService struct {
	bookings *BookingService
	now      func() time.Time
}

func NewCalendarService(bookings *BookingService) *CalendarService {
	return &CalendarService{bookings: bookings, now: time.Now}
}

func (s *CalendarService) Feed(ctx context.Context, caller identity.Caller) (string, error) {
	items, err := s.bookings.listBooked(ctx, caller)
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	stamp := s.now().UTC()
	for _, item := range items {
		event := cal.AddEvent(item.ID.String() + "@office-hours")
		event.SetDtStampTime(stamp)
		event.SetStartAt(item.StartTime)
		event.SetEndAt(item.EndTime)
		event.SetStatus(ics.ObjectStatusConfirmed)
		if caller.Is(models.RoleProfessor) {
			event.SetSummary(fmt.Sprintf("Office hours: %s", item.StudentEmail))
		} else {
			event.SetSummary(fmt.Sprintf("Office hours with %s", item.ProfessorEmail))
		}
	}

	return cal.Serialize(), nil
}

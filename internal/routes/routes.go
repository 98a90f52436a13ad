package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/config"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers bundles everything Setup mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Health       *handlers.HealthHandler
	Availability *handlers.AvailabilityHandler
	Appointments *handlers.AppointmentHandler
}

// Limits are requests per minute per client IP. Zero disables a limiter.
type Limits struct {
	API  int
	Auth int
}

var DefaultLimits = Limits{API: 60, Auth: 10}

func Setup(app *fiber.App, cfg *config.Config, h Handlers, limits Limits) {
	api := app.Group("/api")

	if limits.API > 0 {
		api.Use(ipLimiter(limits.API))
	}

	api.Get("/health", h.Health.Check)

	// Auth: public, with a stricter per-IP limit
	auth := api.Group("/auth")
	if limits.Auth > 0 {
		auth.Use(ipLimiter(limits.Auth))
	}
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", middleware.JWTProtected(cfg), h.Auth.Logout)

	// JWT on each route keeps it off the public ones above
	jwt := middleware.JWTProtected(cfg)
	student := middleware.RoleRequired(models.RoleStudent)
	professor := middleware.RoleRequired(models.RoleProfessor)

	api.Post("/availability", jwt, professor, h.Availability.AddSlot)
	api.Get("/availability/:professorId", jwt, h.Availability.ListSlots)

	api.Get("/appointments/calendar.ics", jwt, h.Appointments.Calendar)
	api.Post("/appointments", jwt, student, h.Appointments.Book)
	api.Get("/appointments", jwt, student, h.Appointments.List)
	api.Delete("/appointments/:id", jwt, h.Appointments.Cancel)

	api.Get("/professor/appointments", jwt, professor, h.Appointments.ProfessorList)
}

func ipLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

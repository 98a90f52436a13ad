package identity

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/office-hours/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrNoCaller = errors.New("no authenticated caller")

// Caller is the verified identity a request acts as.
type Caller struct {
	UserID uuid.UUID
	Role   models.Role
}

func (c Caller) Is(role models.Role) bool {
	return c.Role == role
}

// GetCaller extracts the user id and role from the JWT stored in Fiber locals
// by the JWT middleware.
func GetCaller(c *fiber.Ctx) (Caller, error) {
	claims, err := mapClaims(c)
	if err != nil {
		return Caller{}, err
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return Caller{}, errors.New("missing sub claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Caller{}, errors.New("invalid sub claim")
	}

	role, _ := claims["role"].(string)
	if !models.Role(role).Valid() {
		return Caller{}, errors.New("invalid role claim")
	}

	return Caller{UserID: userID, Role: models.Role(role)}, nil
}

func mapClaims(c *fiber.Ctx) (jwt.MapClaims, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return nil, ErrNoCaller
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}

// handlers/handlers.go - shared service wiring and error mapping
package handlers

import (
	"errors"
	"strconv"

	"matchpanel/database"
	"matchpanel/middleware"
	"matchpanel/models"
	"matchpanel/services"

	"github.com/gofiber/fiber/v2"
)

var (
	matchService       *services.MatchService
	leaderboardService *services.LeaderboardService
)

// InitHandlers builds the service singletons. Must run after InitDB.
func InitHandlers() {
	db := database.GetDB()
	matchService = services.NewMatchService(db)
	leaderboardService = services.NewLeaderboardService(db).
		WithNameResolver(services.GetSteamName)
}

// statusFor maps service error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrAccessDenied):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrInvalidState):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}

func errInvalid(msg string) error {
	return errors.New(msg)
}

func currentUser(c *fiber.Ctx) *models.User {
	return middleware.CurrentUser(c)
}

func paramUint(c *fiber.Ctx, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return uint(v), nil
}

func paramInt(c *fiber.Ctx, name string) (int, error) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}

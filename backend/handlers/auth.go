package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database/models"
)

// Login establishes a session for the given user, creating the user row if
// it does not exist yet.
func Login(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req webmodels.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if req.UserID == "" || req.Username == "" {
			return utils.SendBadRequest(c, "user_id and username are required", nil)
		}

		user := &models.User{
			ID:       req.UserID,
			Username: req.Username,
			Email:    req.Email,
		}
		if err := webApp.Repos.User.Ensure(c.Context(), user); err != nil {
			slog.Error("Failed to ensure user on login",
				slog.String("user_id", req.UserID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create user")
		}

		session := &webmodels.UserSession{
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
		if err := webApp.SessionService.CreateSession(c, session); err != nil {
			return utils.SendInternalServerError(c, "Failed to create session")
		}

		return utils.SendSuccess(c, session, "Logged in")
	}
}

// Logout destroys the current session
func Logout(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		webApp.SessionService.DestroySession(c)
		return utils.SendSuccess(c, nil, "Logged out")
	}
}

// ValidateSession reports whether the request carries a valid session
func ValidateSession(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := webApp.GetSession(c)
		if err != nil {
			return utils.SendUnauthorized(c, "No valid session")
		}
		return utils.SendSuccess(c, session, "")
	}
}

package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hobbyline/cardbinder/backend/services"
	"github.com/hobbyline/cardbinder/backend/utils"
)

// AuthRequired middleware ensures the request carries a valid session
func AuthRequired(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err != nil {
			slog.Debug("Auth required: no valid session", slog.String("error", err.Error()))
			return utils.SendUnauthorized(c, "Authentication required")
		}

		if session == nil || session.UserID == "" {
			slog.Debug("Auth required: invalid session")
			return utils.SendUnauthorized(c, "Authentication required")
		}

		// Slide the expiry for active users so sessions only lapse after
		// a real day of inactivity.
		if sessions.ShouldRefresh(session) {
			if err := sessions.RefreshSession(c, session); err != nil {
				slog.Warn("Failed to refresh session",
					slog.String("user_id", session.UserID),
					slog.String("error", err.Error()))
			}
		}

		c.Locals("user", session)

		return c.Next()
	}
}

// OptionalAuth adds user info to context if authenticated, but doesn't require it
func OptionalAuth(sessions *services.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, err := sessions.GetSession(c)
		if err == nil && session != nil && session.UserID != "" {
			c.Locals("user", session)
		}

		return c.Next()
	}
}

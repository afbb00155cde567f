package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// UsersDetail serves a single user record. Users can only read themselves.
func UsersDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		userID := c.Params("id")
		if userID != session.UserID {
			return utils.SendForbidden(c, "Access denied")
		}

		user, err := webApp.Repos.User.GetByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "User not found")
			}
			return utils.SendInternalServerError(c, "Failed to load user")
		}

		return utils.SendSuccess(c, webmodels.ConvertUserToDTO(user), "")
	}
}

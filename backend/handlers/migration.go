package handlers

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/migration"
)

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// MigrationStart kicks off a migration run in the background and returns
// immediately. Progress is polled via MigrationStatus.
func MigrationStart(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if webApp.Migrator.Running() {
			return utils.SendConflict(c, "A migration run is already in progress", nil)
		}

		// The run outlives the request, so it gets its own context.
		go func() {
			if _, err := webApp.Migrator.Migrate(context.Background()); err != nil {
				slog.Error("Migration run failed",
					slog.String("type", "migration"),
					slog.String("error", err.Error()))
			}
		}()

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"success": true,
			"message": "Migration started",
		})
	}
}

// MigrationStatus reports whether a run is executing and the last result
func MigrationStatus(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, fiber.Map{
			"running":     webApp.Migrator.Running(),
			"last_result": webApp.Migrator.LastResult(),
		}, "")
	}
}

// MigrationVerify compares counts between the two stores
func MigrationVerify(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		report, err := webApp.Migrator.Verify(c.Context())
		if err != nil {
			return utils.SendInternalServerError(c, "Verification failed")
		}
		return utils.SendSuccess(c, report, "")
	}
}

// MigrationClear wipes the local store after an explicit confirmation
func MigrationClear(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req confirmRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		err := webApp.Migrator.ClearLocal(c.Context(), req.Confirm)
		if err != nil {
			if errors.Is(err, migration.ErrNotConfirmed) {
				return utils.SendBadRequest(c, "Confirmation required", nil)
			}
			if errors.Is(err, migration.ErrRunInProgress) {
				return utils.SendConflict(c, "A migration run is in progress", nil)
			}
			return utils.SendInternalServerError(c, "Failed to clear local store")
		}

		return utils.SendSuccess(c, nil, "Local store cleared")
	}
}

// MigrationRollback copies remote data back into the local store
func MigrationRollback(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req confirmRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		result, err := webApp.Migrator.Rollback(c.Context(), req.Confirm)
		if err != nil {
			if errors.Is(err, migration.ErrNotConfirmed) {
				return utils.SendBadRequest(c, "Confirmation required", nil)
			}
			if errors.Is(err, migration.ErrRunInProgress) {
				return utils.SendConflict(c, "A migration run is in progress", nil)
			}
			return utils.SendInternalServerError(c, "Rollback failed")
		}

		return utils.SendSuccess(c, result, "Rollback finished")
	}
}

package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// CardsList serves every card owned by the session user
func CardsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		cards, err := webApp.CardMgmtService.ListCards(c.Context(), session.UserID)
		if err != nil {
			slog.Error("Failed to list cards",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list cards")
		}

		return utils.SendSuccess(c, cards, "")
	}
}

// CardsSearch serves filtered, paginated card search
func CardsSearch(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.CardSearchRequest
		if err := c.QueryParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid search parameters", nil)
		}
		req.Normalize()

		// Free-text queries go through the fuzzy ranker; structured filters
		// go straight to the repository.
		if req.Query != "" && req.Player == "" && req.CollectionID == "" {
			cards, err := webApp.SearchService.FuzzySearchCards(c.Context(), session.UserID, req.Query)
			if err != nil {
				return utils.SendInternalServerError(c, "Search failed")
			}
			return utils.SendSuccess(c, cards, "")
		}

		cards, total, err := webApp.CardMgmtService.SearchCards(c.Context(), session.UserID, &req)
		if err != nil {
			return utils.SendInternalServerError(c, "Search failed")
		}

		pagination := webmodels.NewPaginationInfo(req.Page, req.Limit, total)
		return utils.SendPaginated(c, cards, pagination, "")
	}
}

// CardsDetail serves a single card
func CardsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID := c.Params("id")

		card, err := webApp.CardMgmtService.GetCard(c.Context(), cardID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Card not found")
			}
			return utils.SendInternalServerError(c, "Failed to load card")
		}

		if !ownsCard(c, card.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		return utils.SendSuccess(c, card, "")
	}
}

// CardsCreate creates a new card for the session user
func CardsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.CardCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if validationErrors := utils.ValidateCardCreateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		card, err := webApp.CardMgmtService.CreateCard(c.Context(), session.UserID, &req)
		if err != nil {
			slog.Error("Failed to create card",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create card")
		}

		return utils.SendCreated(c, card, "Card created")
	}
}

// CardsUpdate applies a partial update to an existing card
func CardsUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID := c.Params("id")

		existing, err := webApp.CardMgmtService.GetCard(c.Context(), cardID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Card not found")
			}
			return utils.SendInternalServerError(c, "Failed to load card")
		}
		if !ownsCard(c, existing.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		var req webmodels.CardUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if validationErrors := utils.ValidateCardUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		card, err := webApp.CardMgmtService.UpdateCard(c.Context(), cardID, &req)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to update card")
		}

		return utils.SendSuccess(c, card, "Card updated")
	}
}

// CardsDelete deletes a card
func CardsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cardID := c.Params("id")

		existing, err := webApp.CardMgmtService.GetCard(c.Context(), cardID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Card not found")
			}
			return utils.SendInternalServerError(c, "Failed to load card")
		}
		if !ownsCard(c, existing.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		if err := webApp.CardMgmtService.DeleteCard(c.Context(), cardID); err != nil {
			return utils.SendInternalServerError(c, "Failed to delete card")
		}

		// The card row is gone either way; stored images are best-effort.
		if webApp.ImageService != nil && len(existing.Images) > 0 {
			if err := webApp.ImageService.DeleteCardImages(c.Context(), existing.UserID, cardID); err != nil {
				slog.Warn("Failed to delete stored card images",
					slog.String("card_id", cardID),
					slog.String("error", err.Error()))
			}
		}

		return utils.SendNoContent(c)
	}
}

// ownsCard reports whether the session user owns the record.
func ownsCard(c *fiber.Ctx, ownerID string) bool {
	session, ok := utils.ExtractUserSession(c)
	return ok && session.UserID == ownerID
}

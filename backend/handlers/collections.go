package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// CollectionsList serves every collection owned by the session user
func CollectionsList(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		collections, err := webApp.CollectionService.ListCollections(c.Context(), session.UserID)
		if err != nil {
			slog.Error("Failed to list collections",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to list collections")
		}

		return utils.SendSuccess(c, collections, "")
	}
}

// CollectionsDetail serves a single collection
func CollectionsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collectionID := c.Params("id")

		collection, err := webApp.CollectionService.GetCollection(c.Context(), collectionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Collection not found")
			}
			return utils.SendInternalServerError(c, "Failed to load collection")
		}

		if !ownsCard(c, collection.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		return utils.SendSuccess(c, collection, "")
	}
}

// CollectionCardsAPI serves the cards inside a collection
func CollectionCardsAPI(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collectionID := c.Params("id")

		collection, err := webApp.CollectionService.GetCollection(c.Context(), collectionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Collection not found")
			}
			return utils.SendInternalServerError(c, "Failed to load collection")
		}
		if !ownsCard(c, collection.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		cards, err := webApp.CollectionService.GetCollectionCards(c.Context(), collectionID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to load collection cards")
		}

		dtos := make([]*webmodels.CardDTO, len(cards))
		for i, card := range cards {
			dtos[i] = webmodels.ConvertCardToDTO(card, nil)
			dtos[i].CollectionName = collection.Name
		}

		return utils.SendSuccess(c, dtos, "")
	}
}

// CollectionsCreate creates a new collection for the session user
func CollectionsCreate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}

		var req webmodels.CollectionCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if validationErrors := utils.ValidateCollectionCreateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		collection, err := webApp.CollectionService.CreateCollection(c.Context(), session.UserID, &req)
		if err != nil {
			slog.Error("Failed to create collection",
				slog.String("user_id", session.UserID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to create collection")
		}

		return utils.SendCreated(c, collection, "Collection created")
	}
}

// CollectionsUpdate applies a partial update to a collection
func CollectionsUpdate(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collectionID := c.Params("id")

		existing, err := webApp.CollectionService.GetCollection(c.Context(), collectionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Collection not found")
			}
			return utils.SendInternalServerError(c, "Failed to load collection")
		}
		if !ownsCard(c, existing.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		var req webmodels.CollectionUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}

		if validationErrors := utils.ValidateCollectionUpdateRequest(&req); len(validationErrors) > 0 {
			return utils.HandleValidationErrors(c, validationErrors)
		}

		collection, err := webApp.CollectionService.UpdateCollection(c.Context(), collectionID, &req)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to update collection")
		}

		return utils.SendSuccess(c, collection, "Collection updated")
	}
}

// CollectionsSetDefault makes a collection the user's default
func CollectionsSetDefault(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := utils.ExtractUserSession(c)
		if !ok {
			return utils.SendUnauthorized(c, "Authentication required")
		}
		collectionID := c.Params("id")

		if err := webApp.CollectionService.SetDefault(c.Context(), session.UserID, collectionID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Collection not found")
			}
			return utils.SendInternalServerError(c, "Failed to set default collection")
		}

		return utils.SendSuccess(c, nil, "Default collection updated")
	}
}

// CollectionsDelete deletes a collection; collections that still contain
// cards are refused with a conflict.
func CollectionsDelete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collectionID := c.Params("id")

		existing, err := webApp.CollectionService.GetCollection(c.Context(), collectionID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Collection not found")
			}
			return utils.SendInternalServerError(c, "Failed to load collection")
		}
		if !ownsCard(c, existing.UserID) {
			return utils.SendForbidden(c, "Access denied")
		}

		if err := webApp.CollectionService.DeleteCollection(c.Context(), collectionID); err != nil {
			if errors.Is(err, repositories.ErrCollectionNotEmpty) {
				return utils.SendConflict(c, "Collection still contains cards", nil)
			}
			return utils.SendInternalServerError(c, "Failed to delete collection")
		}

		return utils.SendNoContent(c)
	}
}

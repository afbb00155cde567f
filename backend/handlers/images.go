package handlers

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// maxImageSize caps multipart image uploads at 10 MiB.
const maxImageSize = 10 << 20

// CardImageUpload stores a card image and appends its URL to the card record
func CardImageUpload(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if webApp.ImageService == nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "NOT_CONFIGURED",
				"Image storage is not configured", nil)
		}

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

		fileHeader, err := c.FormFile("image")
		if err != nil {
			return utils.SendBadRequest(c, "Missing image file", nil)
		}
		if fileHeader.Size > maxImageSize {
			return utils.SendBadRequest(c, "Image exceeds the 10 MiB limit", nil)
		}

		file, err := fileHeader.Open()
		if err != nil {
			return utils.SendBadRequest(c, "Unreadable image file", nil)
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return utils.SendBadRequest(c, "Unreadable image file", nil)
		}

		url, err := webApp.ImageService.UploadCardImage(c.Context(), existing.UserID, cardID, fileHeader.Filename, data)
		if err != nil {
			slog.Error("Failed to upload card image",
				slog.String("card_id", cardID),
				slog.String("error", err.Error()))
			return utils.SendInternalServerError(c, "Failed to store image")
		}

		images := append(existing.Images, url)
		card, err := webApp.CardMgmtService.UpdateCard(c.Context(), cardID, &webmodels.CardUpdateRequest{
			Images: images,
		})
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to attach image to card")
		}

		return utils.SendCreated(c, card, "Image uploaded")
	}
}

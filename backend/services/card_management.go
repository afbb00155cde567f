package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// CardManagementService provides card CRUD and search for the web interface
type CardManagementService struct {
	repos *webmodels.Repositories
}

// NewCardManagementService creates a new card management service
func NewCardManagementService(repos *webmodels.Repositories) *CardManagementService {
	return &CardManagementService{repos: repos}
}

// SearchCards searches for cards based on the provided filters
func (cms *CardManagementService) SearchCards(ctx context.Context, userID string, req *webmodels.CardSearchRequest) ([]*webmodels.CardDTO, int64, error) {
	req.Normalize()

	filters := repositories.SearchFilters{
		UserID:       userID,
		Player:       req.Player,
		Team:         req.Team,
		Year:         req.Year,
		Brand:        req.Brand,
		Category:     req.Category,
		CollectionID: req.CollectionID,
		GradedOnly:   req.GradedOnly,
	}
	if filters.Player == "" {
		filters.Player = req.Query
	}

	offset := (req.Page - 1) * req.Limit

	cards, total, err := cms.repos.Card.Search(ctx, filters, offset, req.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search cards: %w", err)
	}

	return cms.toDTOs(ctx, cards), int64(total), nil
}

// toDTOs converts cards, batch-fetching the referenced collections to avoid
// an N+1 query.
func (cms *CardManagementService) toDTOs(ctx context.Context, cards []*models.Card) []*webmodels.CardDTO {
	collectionMap := make(map[string]*models.Collection)
	for _, card := range cards {
		if card.CollectionID == nil {
			continue
		}
		id := *card.CollectionID
		if _, ok := collectionMap[id]; ok {
			continue
		}
		collection, err := cms.repos.Collection.GetByID(ctx, id)
		if err != nil {
			slog.Warn("Failed to fetch collection for card",
				slog.String("collection_id", id),
				slog.String("error", err.Error()))
			continue
		}
		collectionMap[id] = collection
	}

	dtos := make([]*webmodels.CardDTO, len(cards))
	for i, card := range cards {
		var collection *models.Collection
		if card.CollectionID != nil {
			collection = collectionMap[*card.CollectionID]
		}
		dtos[i] = webmodels.ConvertCardToDTO(card, collection)
	}
	return dtos
}

// GetCard retrieves a single card by ID
func (cms *CardManagementService) GetCard(ctx context.Context, cardID string) (*webmodels.CardDTO, error) {
	card, err := cms.repos.Card.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	var collection *models.Collection
	if card.CollectionID != nil {
		collection, err = cms.repos.Collection.GetByID(ctx, *card.CollectionID)
		if err != nil {
			slog.Warn("Failed to get collection for card",
				slog.String("card_id", card.ID),
				slog.String("collection_id", *card.CollectionID),
				slog.String("error", err.Error()))
			collection = nil
		}
	}

	return webmodels.ConvertCardToDTO(card, collection), nil
}

// ListCards returns every card owned by a user
func (cms *CardManagementService) ListCards(ctx context.Context, userID string) ([]*webmodels.CardDTO, error) {
	cards, err := cms.repos.Card.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cms.toDTOs(ctx, cards), nil
}

// CreateCard creates a new card owned by userID
func (cms *CardManagementService) CreateCard(ctx context.Context, userID string, req *webmodels.CardCreateRequest) (*webmodels.CardDTO, error) {
	purchaseDate, err := parseRequestDate(req.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("invalid purchase_date: %w", err)
	}
	sellDate, err := parseRequestDate(req.SellDate)
	if err != nil {
		return nil, fmt.Errorf("invalid sell_date: %w", err)
	}

	collectionID := req.CollectionID
	if collectionID == nil {
		// New cards land in the user's default collection when one exists.
		defaultCollection, err := cms.repos.Collection.GetDefault(ctx, userID)
		switch {
		case err == nil:
			collectionID = &defaultCollection.ID
		case errors.Is(err, repositories.ErrNotFound):
			// No default configured; the card stays unfiled.
		default:
			return nil, fmt.Errorf("failed to resolve default collection: %w", err)
		}
	}

	card := &models.Card{
		ID:             uuid.NewString(),
		UserID:         userID,
		CollectionID:   collectionID,
		Player:         req.Player,
		Team:           req.Team,
		Year:           req.Year,
		Brand:          req.Brand,
		Category:       req.Category,
		Condition:      req.Condition,
		GradingCompany: req.GradingCompany,
		Grade:          req.Grade,
		PurchasePrice:  req.PurchasePrice,
		CurrentValue:   req.CurrentValue,
		SellPrice:      req.SellPrice,
		PurchaseDate:   purchaseDate,
		SellDate:       sellDate,
		Notes:          req.Notes,
		Images:         req.Images,
	}

	if err := cms.repos.Card.Create(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	return cms.GetCard(ctx, card.ID)
}

// UpdateCard applies a partial update to an existing card
func (cms *CardManagementService) UpdateCard(ctx context.Context, cardID string, req *webmodels.CardUpdateRequest) (*webmodels.CardDTO, error) {
	card, err := cms.repos.Card.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if req.CollectionID != nil {
		card.CollectionID = req.CollectionID
	}
	if req.Player != nil {
		card.Player = *req.Player
	}
	if req.Team != nil {
		card.Team = *req.Team
	}
	if req.Year != nil {
		card.Year = *req.Year
	}
	if req.Brand != nil {
		card.Brand = *req.Brand
	}
	if req.Category != nil {
		card.Category = *req.Category
	}
	if req.Condition != nil {
		card.Condition = *req.Condition
	}
	if req.GradingCompany != nil {
		card.GradingCompany = *req.GradingCompany
	}
	if req.Grade != nil {
		card.Grade = req.Grade
	}
	if req.PurchasePrice != nil {
		card.PurchasePrice = req.PurchasePrice
	}
	if req.CurrentValue != nil {
		card.CurrentValue = req.CurrentValue
	}
	if req.SellPrice != nil {
		card.SellPrice = req.SellPrice
	}
	if req.PurchaseDate != nil {
		purchaseDate, err := parseRequestDate(req.PurchaseDate)
		if err != nil {
			return nil, fmt.Errorf("invalid purchase_date: %w", err)
		}
		card.PurchaseDate = purchaseDate
	}
	if req.SellDate != nil {
		sellDate, err := parseRequestDate(req.SellDate)
		if err != nil {
			return nil, fmt.Errorf("invalid sell_date: %w", err)
		}
		card.SellDate = sellDate
	}
	if req.Notes != nil {
		card.Notes = *req.Notes
	}
	if req.Images != nil {
		card.Images = req.Images
	}

	if err := cms.repos.Card.Update(ctx, card); err != nil {
		return nil, fmt.Errorf("failed to update card: %w", err)
	}

	return cms.GetCard(ctx, card.ID)
}

// DeleteCard deletes a card by ID
func (cms *CardManagementService) DeleteCard(ctx context.Context, cardID string) error {
	return cms.repos.Card.Delete(ctx, cardID)
}

func parseRequestDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, *value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognized date %q", *value)
}

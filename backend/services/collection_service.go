package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/internal/database/models"
)

// CollectionService provides collection CRUD plus the default-flag rules.
type CollectionService struct {
	repos *webmodels.Repositories
}

// NewCollectionService creates a new collection service
func NewCollectionService(repos *webmodels.Repositories) *CollectionService {
	return &CollectionService{repos: repos}
}

// ListCollections returns every collection owned by a user, with card counts
func (cs *CollectionService) ListCollections(ctx context.Context, userID string) ([]*webmodels.CollectionDTO, error) {
	collections, err := cs.repos.Collection.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	dtos := make([]*webmodels.CollectionDTO, len(collections))
	for i, collection := range collections {
		dtos[i] = webmodels.ConvertCollectionToDTO(collection, cs.cardCount(ctx, collection.ID))
	}
	return dtos, nil
}

// GetCollection retrieves a single collection by ID
func (cs *CollectionService) GetCollection(ctx context.Context, collectionID string) (*webmodels.CollectionDTO, error) {
	collection, err := cs.repos.Collection.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	return webmodels.ConvertCollectionToDTO(collection, cs.cardCount(ctx, collection.ID)), nil
}

// GetCollectionCards returns the cards in a collection
func (cs *CollectionService) GetCollectionCards(ctx context.Context, collectionID string) ([]*models.Card, error) {
	if _, err := cs.repos.Collection.GetByID(ctx, collectionID); err != nil {
		return nil, err
	}
	return cs.repos.Card.GetByCollectionID(ctx, collectionID)
}

// CreateCollection creates a new collection owned by userID
func (cs *CollectionService) CreateCollection(ctx context.Context, userID string, req *webmodels.CollectionCreateRequest) (*webmodels.CollectionDTO, error) {
	collection := &models.Collection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsDefault:   req.IsDefault,
	}

	if err := cs.repos.Collection.Create(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return webmodels.ConvertCollectionToDTO(collection, 0), nil
}

// UpdateCollection applies a partial update to a collection. The default
// flag is changed only through SetDefault.
func (cs *CollectionService) UpdateCollection(ctx context.Context, collectionID string, req *webmodels.CollectionUpdateRequest) (*webmodels.CollectionDTO, error) {
	collection, err := cs.repos.Collection.GetByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		collection.Name = *req.Name
	}
	if req.Description != nil {
		collection.Description = *req.Description
	}
	if req.Color != nil {
		collection.Color = *req.Color
	}
	if req.Icon != nil {
		collection.Icon = *req.Icon
	}

	if err := cs.repos.Collection.Update(ctx, collection); err != nil {
		return nil, fmt.Errorf("failed to update collection: %w", err)
	}

	return webmodels.ConvertCollectionToDTO(collection, cs.cardCount(ctx, collection.ID)), nil
}

// SetDefault makes the given collection the user's default, clearing any
// previous default in the same transaction.
func (cs *CollectionService) SetDefault(ctx context.Context, userID, collectionID string) error {
	return cs.repos.Collection.SetDefault(ctx, userID, collectionID)
}

// DeleteCollection deletes a collection. Collections that still contain
// cards are refused by the repository.
func (cs *CollectionService) DeleteCollection(ctx context.Context, collectionID string) error {
	return cs.repos.Collection.Delete(ctx, collectionID)
}

func (cs *CollectionService) cardCount(ctx context.Context, collectionID string) int {
	cards, err := cs.repos.Card.GetByCollectionID(ctx, collectionID)
	if err != nil {
		slog.Warn("Failed to count collection cards",
			slog.String("collection_id", collectionID),
			slog.String("error", err.Error()))
		return 0
	}
	return len(cards)
}

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/internal/database/models"
)

// CardSearchItems implements fuzzy.Source for card searching
type CardSearchItems []CardSearchItem

// CardSearchItem represents a single searchable card
type CardSearchItem struct {
	Card *models.Card
	Name string
}

// Len returns the length of the collection
func (items CardSearchItems) Len() int {
	return len(items)
}

// String returns the searchable string at index i
func (items CardSearchItems) String(i int) string {
	return items[i].Name
}

// SearchService layers fuzzy matching over the repository prefilters: the
// repository narrows by structured fields, then the query string is matched
// against player, team and brand with relevance ranking.
type SearchService struct {
	cardMgmt *CardManagementService
}

// NewSearchService creates a new search service
func NewSearchService(cardMgmt *CardManagementService) *SearchService {
	return &SearchService{cardMgmt: cardMgmt}
}

// searchKey builds the string fuzzy matching runs against.
func searchKey(card *models.Card) string {
	parts := []string{card.Player}
	if card.Team != "" {
		parts = append(parts, card.Team)
	}
	if card.Brand != "" {
		parts = append(parts, card.Brand)
	}
	if card.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", card.Year))
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// FuzzySearchCards ranks a user's cards against a free-text query. An empty
// query returns everything in repository order.
func (ss *SearchService) FuzzySearchCards(ctx context.Context, userID, query string) ([]*webmodels.CardDTO, error) {
	cards, err := ss.cardMgmt.repos.Card.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cards for search: %w", err)
	}

	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return ss.cardMgmt.toDTOs(ctx, cards), nil
	}

	items := make(CardSearchItems, len(cards))
	for i, card := range cards {
		items[i] = CardSearchItem{Card: card, Name: searchKey(card)}
	}

	matches := fuzzy.FindFrom(query, items)

	ranked := make([]*models.Card, len(matches))
	for i, match := range matches {
		ranked[i] = items[match.Index].Card
	}
	return ss.cardMgmt.toDTOs(ctx, ranked), nil
}

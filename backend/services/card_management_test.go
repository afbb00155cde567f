package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	dbmodels "github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// Repository stubs embed the interface so only the methods a test path
// touches need implementations.

type stubCardRepo struct {
	repositories.CardRepository
	cards map[string]*dbmodels.Card
}

func newStubCardRepo() *stubCardRepo {
	return &stubCardRepo{cards: make(map[string]*dbmodels.Card)}
}

func (s *stubCardRepo) Create(_ context.Context, card *dbmodels.Card) error {
	s.cards[card.ID] = card
	return nil
}

func (s *stubCardRepo) GetByID(_ context.Context, id string) (*dbmodels.Card, error) {
	card, ok := s.cards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return card, nil
}

type stubCollectionRepo struct {
	repositories.CollectionRepository
	defaultCollection *dbmodels.Collection
}

func (s *stubCollectionRepo) GetDefault(_ context.Context, userID string) (*dbmodels.Collection, error) {
	if s.defaultCollection != nil && s.defaultCollection.UserID == userID {
		return s.defaultCollection, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubCollectionRepo) GetByID(_ context.Context, id string) (*dbmodels.Collection, error) {
	if s.defaultCollection != nil && s.defaultCollection.ID == id {
		return s.defaultCollection, nil
	}
	return nil, repositories.ErrNotFound
}

func newCardServiceWithDefault(defaultCollection *dbmodels.Collection) *CardManagementService {
	repos := webmodels.NewRepositories(
		nil,
		newStubCardRepo(),
		&stubCollectionRepo{defaultCollection: defaultCollection},
	)
	return NewCardManagementService(repos)
}

func TestCreateCardAssignsDefaultCollection(t *testing.T) {
	cms := newCardServiceWithDefault(&dbmodels.Collection{
		ID:        "col-default",
		UserID:    "user-1",
		Name:      "Binder",
		IsDefault: true,
	})

	card, err := cms.CreateCard(context.Background(), "user-1", &webmodels.CardCreateRequest{
		Player: "Ken Griffey Jr.",
		Year:   1989,
	})
	require.NoError(t, err)

	require.NotNil(t, card.CollectionID)
	assert.Equal(t, "col-default", *card.CollectionID)
	assert.Equal(t, "Binder", card.CollectionName)
}

func TestCreateCardKeepsExplicitCollection(t *testing.T) {
	cms := newCardServiceWithDefault(&dbmodels.Collection{
		ID:        "col-default",
		UserID:    "user-1",
		Name:      "Binder",
		IsDefault: true,
	})

	explicit := "col-explicit"
	card, err := cms.CreateCard(context.Background(), "user-1", &webmodels.CardCreateRequest{
		CollectionID: &explicit,
		Player:       "Nolan Ryan",
		Year:         1968,
	})
	require.NoError(t, err)

	require.NotNil(t, card.CollectionID)
	assert.Equal(t, "col-explicit", *card.CollectionID)
}

func TestCreateCardWithoutDefaultStaysUnfiled(t *testing.T) {
	cms := newCardServiceWithDefault(nil)

	card, err := cms.CreateCard(context.Background(), "user-1", &webmodels.CardCreateRequest{
		Player: "Mike Trout",
		Year:   2011,
	})
	require.NoError(t, err)

	assert.Nil(t, card.CollectionID)
}

package localstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func ptrFloat(v float64) *float64 { return &v }
func ptrString(v string) *string  { return &v }

func TestProfileRoundTrip(t *testing.T) {
	store := openTestStore(t)

	_, err := store.GetProfile()
	require.ErrorIs(t, err, ErrNoProfile)

	require.NoError(t, store.SaveProfile(&Profile{
		ID:       "user-1",
		Username: "colleen",
		Email:    "colleen@example.com",
	}))

	profile, err := store.GetProfile()
	require.NoError(t, err)
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "colleen", profile.Username)
	assert.Equal(t, "colleen@example.com", profile.Email)

	// Saving again updates in place.
	require.NoError(t, store.SaveProfile(&Profile{ID: "user-1", Username: "colleen2"}))
	profile, err = store.GetProfile()
	require.NoError(t, err)
	assert.Equal(t, "colleen2", profile.Username)
}

func TestCardPutGetList(t *testing.T) {
	store := openTestStore(t)

	card := &Card{
		ID:             "card-1",
		UserID:         "user-1",
		CollectionID:   ptrString("col-1"),
		Player:         "Ken Griffey Jr",
		Team:           "Mariners",
		Year:           1989,
		Brand:          "Upper Deck",
		Category:       "baseball",
		Condition:      "near mint",
		GradingCompany: "PSA",
		Grade:          ptrFloat(9),
		PurchasePrice:  ptrFloat(120),
		CurrentValue:   ptrFloat(300),
		PurchaseDate:   ptrString("2024-05-01"),
		Notes:          "rookie card",
		Images:         []string{"https://img.example.com/1.jpg"},
		CreatedAt:      "2024-05-01T10:00:00Z",
		UpdatedAt:      "2024-05-01T10:00:00Z",
	}
	require.NoError(t, store.PutCard(card))

	got, err := store.GetCard("card-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, card.Player, got.Player)
	assert.Equal(t, card.Year, got.Year)
	require.NotNil(t, got.CollectionID)
	assert.Equal(t, "col-1", *got.CollectionID)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 9.0, *got.Grade)
	assert.Equal(t, []string{"https://img.example.com/1.jpg"}, got.Images)

	missing, err := store.GetCard("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	cards, err := store.ListCards()
	require.NoError(t, err)
	assert.Len(t, cards, 1)

	count, err := store.CountCards()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCardPutOverwrites(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.PutCard(&Card{
		ID: "card-1", UserID: "user-1", Player: "Mickey Mantle",
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
	}))
	require.NoError(t, store.PutCard(&Card{
		ID: "card-1", UserID: "user-1", Player: "Willie Mays",
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-02-01T00:00:00Z",
	}))

	got, err := store.GetCard("card-1")
	require.NoError(t, err)
	assert.Equal(t, "Willie Mays", got.Player)

	count, err := store.CountCards()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCardNilOptionals(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.PutCard(&Card{
		ID: "card-bare", UserID: "user-1", Player: "Tom Brady",
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
	}))

	got, err := store.GetCard("card-bare")
	require.NoError(t, err)
	assert.Nil(t, got.CollectionID)
	assert.Nil(t, got.Grade)
	assert.Nil(t, got.PurchasePrice)
	assert.Nil(t, got.PurchaseDate)
	assert.Empty(t, got.Images)
}

func TestDeleteAllCards(t *testing.T) {
	store := openTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.PutCard(&Card{
			ID: id, UserID: "user-1", Player: "P",
			CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-01T00:00:00Z",
		}))
	}

	require.NoError(t, store.DeleteAllCards())

	count, err := store.CountCards()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCollectionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	collection := &Collection{
		ID:          "col-1",
		UserID:      "user-1",
		Name:        "Rookies",
		Description: "rookie cards only",
		Color:       "#ff0000",
		Icon:        "star",
		IsDefault:   true,
		CreatedAt:   "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-01T00:00:00Z",
	}
	require.NoError(t, store.PutCollection(collection))

	got, err := store.GetCollection("col-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Rookies", got.Name)
	assert.True(t, got.IsDefault)

	collections, err := store.ListCollections()
	require.NoError(t, err)
	assert.Len(t, collections, 1)

	count, err := store.CountCollections()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, store.DeleteAllCollections())
	count, err = store.CountCollections()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

package migration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hobbyline/cardbinder/internal/localstore"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }

func TestParseLocalTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		fails bool
	}{
		{name: "rfc3339", input: "2024-05-01T10:30:00Z", want: time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)},
		{name: "rfc3339 nano", input: "2024-05-01T10:30:00.123456789Z", want: time.Date(2024, 5, 1, 10, 30, 0, 123456789, time.UTC)},
		{name: "bare date", input: "2024-05-01", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "yesterday", fails: true},
		{name: "empty", input: "", fails: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLocalTime(tt.input)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestConvertCardPreservesFields(t *testing.T) {
	lc := &localstore.Card{
		ID:             "card-1",
		UserID:         "user-1",
		CollectionID:   strPtr("col-1"),
		Player:         "Ken Griffey Jr",
		Team:           "Mariners",
		Year:           1989,
		Brand:          "Upper Deck",
		Category:       "baseball",
		Condition:      "near mint",
		GradingCompany: "PSA",
		Grade:          f64Ptr(9.5),
		PurchasePrice:  f64Ptr(120),
		CurrentValue:   f64Ptr(300),
		PurchaseDate:   strPtr("2024-05-01"),
		Notes:          "rookie card",
		Images:         []string{"a.jpg", "b.jpg"},
		CreatedAt:      "2024-05-01T10:00:00Z",
		UpdatedAt:      "2024-06-01T10:00:00Z",
	}

	card, err := convertCard(lc)
	require.NoError(t, err)

	assert.Equal(t, "card-1", card.ID)
	assert.Equal(t, "user-1", card.UserID)
	require.NotNil(t, card.CollectionID)
	assert.Equal(t, "col-1", *card.CollectionID)
	assert.Equal(t, "Ken Griffey Jr", card.Player)
	assert.Equal(t, 1989, card.Year)
	require.NotNil(t, card.Grade)
	assert.Equal(t, 9.5, *card.Grade)
	require.NotNil(t, card.PurchaseDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *card.PurchaseDate)
	assert.Nil(t, card.SellDate)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, card.Images)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), card.CreatedAt)
}

func TestConvertCardRejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		card *localstore.Card
	}{
		{name: "empty id", card: &localstore.Card{UserID: "u", Player: "P"}},
		{name: "no owner", card: &localstore.Card{ID: "c", Player: "P"}},
		{name: "negative price", card: &localstore.Card{ID: "c", UserID: "u", Player: "P", PurchasePrice: f64Ptr(-1)}},
		{name: "negative value", card: &localstore.Card{ID: "c", UserID: "u", Player: "P", CurrentValue: f64Ptr(-0.01)}},
		{name: "bad purchase date", card: &localstore.Card{ID: "c", UserID: "u", Player: "P", PurchaseDate: strPtr("not a date")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convertCard(tt.card)
			require.Error(t, err)
		})
	}
}

func TestConvertCardFallsBackOnBadTimestamps(t *testing.T) {
	lc := &localstore.Card{
		ID: "c", UserID: "u", Player: "P",
		CreatedAt: "???", UpdatedAt: "???",
	}
	card, err := convertCard(lc)
	require.NoError(t, err)
	assert.False(t, card.CreatedAt.IsZero())
	assert.Equal(t, card.CreatedAt, card.UpdatedAt)
}

func TestConvertCollection(t *testing.T) {
	lc := &localstore.Collection{
		ID: "col-1", UserID: "user-1", Name: "Rookies",
		Description: "d", Color: "#fff", Icon: "star", IsDefault: true,
		CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-01-02T00:00:00Z",
	}

	collection, err := convertCollection(lc)
	require.NoError(t, err)
	assert.Equal(t, "Rookies", collection.Name)
	assert.True(t, collection.IsDefault)

	_, err = convertCollection(&localstore.Collection{ID: "x", UserID: "u"})
	require.Error(t, err, "collection without a name must be rejected")
}

func TestCardRoundTripThroughLocalLayout(t *testing.T) {
	lc := &localstore.Card{
		ID: "card-1", UserID: "user-1", Player: "P",
		Grade:        f64Ptr(8),
		PurchaseDate: strPtr("2024-05-01T00:00:00Z"),
		Images:       []string{"a.jpg"},
		CreatedAt:    "2024-05-01T10:00:00Z",
		UpdatedAt:    "2024-05-01T10:00:00Z",
	}

	card, err := convertCard(lc)
	require.NoError(t, err)

	back := cardToLocal(card)
	assert.Equal(t, lc.ID, back.ID)
	assert.Equal(t, lc.UserID, back.UserID)
	assert.Equal(t, lc.Player, back.Player)
	assert.Equal(t, lc.Images, back.Images)
	require.NotNil(t, back.PurchaseDate)
	assert.Equal(t, "2024-05-01T00:00:00Z", *back.PurchaseDate)
}

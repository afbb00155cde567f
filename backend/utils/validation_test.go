package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hobbyline/cardbinder/backend/models"
)

func floatPtr(v float64) *float64 { return &v }
func stringPtr(s string) *string  { return &s }
func intPtr(v int) *int           { return &v }

func fieldNames(errs []models.ValidationError) []string {
	names := make([]string, 0, len(errs))
	for _, e := range errs {
		names = append(names, e.Field)
	}
	return names
}

func TestValidateCardCreateRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        models.CardCreateRequest
		wantFields []string
	}{
		{
			name: "valid card",
			req: models.CardCreateRequest{
				Player: "Mickey Mantle", Year: 1952,
				Grade: floatPtr(8.5), PurchasePrice: floatPtr(1000),
			},
		},
		{
			name:       "missing player",
			req:        models.CardCreateRequest{Year: 1990},
			wantFields: []string{"player"},
		},
		{
			name: "player too long",
			req: models.CardCreateRequest{
				Player: strings.Repeat("x", MaxPlayerNameLength+1),
			},
			wantFields: []string{"player"},
		},
		{
			name:       "year before cards existed",
			req:        models.CardCreateRequest{Player: "P", Year: 1492},
			wantFields: []string{"year"},
		},
		{
			name:       "year in the far future",
			req:        models.CardCreateRequest{Player: "P", Year: time.Now().Year() + 5},
			wantFields: []string{"year"},
		},
		{
			name: "zero year allowed",
			req:  models.CardCreateRequest{Player: "P"},
		},
		{
			name:       "grade out of range",
			req:        models.CardCreateRequest{Player: "P", Grade: floatPtr(11)},
			wantFields: []string{"grade"},
		},
		{
			name:       "negative money",
			req:        models.CardCreateRequest{Player: "P", PurchasePrice: floatPtr(-5)},
			wantFields: []string{"purchase_price"},
		},
		{
			name: "notes too long",
			req: models.CardCreateRequest{
				Player: "P", Notes: strings.Repeat("n", MaxNotesLength+1),
			},
			wantFields: []string{"notes"},
		},
		{
			name: "multiple problems reported together",
			req: models.CardCreateRequest{
				Year: 1000, Grade: floatPtr(-1), SellPrice: floatPtr(-1),
			},
			wantFields: []string{"player", "year", "grade", "sell_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCardCreateRequest(&tt.req)
			assert.ElementsMatch(t, tt.wantFields, fieldNames(errs))
		})
	}
}

func TestValidateCardUpdateRequest(t *testing.T) {
	t.Run("empty update is valid", func(t *testing.T) {
		assert.Empty(t, ValidateCardUpdateRequest(&models.CardUpdateRequest{}))
	})

	t.Run("player cannot be cleared", func(t *testing.T) {
		errs := ValidateCardUpdateRequest(&models.CardUpdateRequest{Player: stringPtr("")})
		assert.Equal(t, []string{"player"}, fieldNames(errs))
	})

	t.Run("bad year rejected", func(t *testing.T) {
		errs := ValidateCardUpdateRequest(&models.CardUpdateRequest{Year: intPtr(1800)})
		assert.Equal(t, []string{"year"}, fieldNames(errs))
	})
}

func TestValidateCollectionRequests(t *testing.T) {
	assert.Empty(t, ValidateCollectionCreateRequest(&models.CollectionCreateRequest{Name: "Rookies"}))

	errs := ValidateCollectionCreateRequest(&models.CollectionCreateRequest{})
	assert.Equal(t, []string{"name"}, fieldNames(errs))

	errs = ValidateCollectionUpdateRequest(&models.CollectionUpdateRequest{Name: stringPtr("")})
	assert.Equal(t, []string{"name"}, fieldNames(errs))

	assert.Empty(t, ValidateCollectionUpdateRequest(&models.CollectionUpdateRequest{}))
}

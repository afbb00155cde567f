package migration

import (
	"fmt"
	"time"

	"github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/localstore"
)

// dateLayouts covers the formats the browser app wrote: full RFC 3339
// timestamps and bare dates.
var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

func parseLocalTime(value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}

func parseOptionalTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseLocalTime(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func checkNonNegative(field string, value *float64) error {
	if value != nil && *value < 0 {
		return fmt.Errorf("%s must be nonnegative, got %v", field, *value)
	}
	return nil
}

// convertCard maps a browser-era local card onto the remote schema,
// preserving the identifier. Malformed rows are reported, not repaired.
func convertCard(lc *localstore.Card) (*models.Card, error) {
	if lc.ID == "" {
		return nil, fmt.Errorf("card has empty identifier")
	}
	if lc.UserID == "" {
		return nil, fmt.Errorf("card %s has no owning user", lc.ID)
	}
	for field, v := range map[string]*float64{
		"purchasePrice": lc.PurchasePrice,
		"currentValue":  lc.CurrentValue,
		"sellPrice":     lc.SellPrice,
	} {
		if err := checkNonNegative(field, v); err != nil {
			return nil, fmt.Errorf("card %s: %w", lc.ID, err)
		}
	}

	purchaseDate, err := parseOptionalTime(lc.PurchaseDate)
	if err != nil {
		return nil, fmt.Errorf("card %s purchaseDate: %w", lc.ID, err)
	}
	sellDate, err := parseOptionalTime(lc.SellDate)
	if err != nil {
		return nil, fmt.Errorf("card %s sellDate: %w", lc.ID, err)
	}

	createdAt, err := parseLocalTime(lc.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := parseLocalTime(lc.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return &models.Card{
		ID:             lc.ID,
		UserID:         lc.UserID,
		CollectionID:   lc.CollectionID,
		Player:         lc.Player,
		Team:           lc.Team,
		Year:           lc.Year,
		Brand:          lc.Brand,
		Category:       lc.Category,
		Condition:      lc.Condition,
		GradingCompany: lc.GradingCompany,
		Grade:          lc.Grade,
		PurchasePrice:  lc.PurchasePrice,
		CurrentValue:   lc.CurrentValue,
		SellPrice:      lc.SellPrice,
		PurchaseDate:   purchaseDate,
		SellDate:       sellDate,
		Notes:          lc.Notes,
		Images:         lc.Images,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

func convertCollection(lc *localstore.Collection) (*models.Collection, error) {
	if lc.ID == "" {
		return nil, fmt.Errorf("collection has empty identifier")
	}
	if lc.UserID == "" {
		return nil, fmt.Errorf("collection %s has no owning user", lc.ID)
	}
	if lc.Name == "" {
		return nil, fmt.Errorf("collection %s has no name", lc.ID)
	}

	createdAt, err := parseLocalTime(lc.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}
	updatedAt, err := parseLocalTime(lc.UpdatedAt)
	if err != nil {
		updatedAt = createdAt
	}

	return &models.Collection{
		ID:          lc.ID,
		UserID:      lc.UserID,
		Name:        lc.Name,
		Description: lc.Description,
		Color:       lc.Color,
		Icon:        lc.Icon,
		IsDefault:   lc.IsDefault,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func formatOptionalTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

// cardToLocal maps a remote card back onto the browser-era layout for
// rollback.
func cardToLocal(c *models.Card) *localstore.Card {
	return &localstore.Card{
		ID:             c.ID,
		UserID:         c.UserID,
		CollectionID:   c.CollectionID,
		Player:         c.Player,
		Team:           c.Team,
		Year:           c.Year,
		Brand:          c.Brand,
		Category:       c.Category,
		Condition:      c.Condition,
		GradingCompany: c.GradingCompany,
		Grade:          c.Grade,
		PurchasePrice:  c.PurchasePrice,
		CurrentValue:   c.CurrentValue,
		SellPrice:      c.SellPrice,
		PurchaseDate:   formatOptionalTime(c.PurchaseDate),
		SellDate:       formatOptionalTime(c.SellDate),
		Notes:          c.Notes,
		Images:         c.Images,
		CreatedAt:      c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func collectionToLocal(c *models.Collection) *localstore.Collection {
	return &localstore.Collection{
		ID:          c.ID,
		UserID:      c.UserID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		Icon:        c.Icon,
		IsDefault:   c.IsDefault,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

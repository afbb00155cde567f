package utils

import (
	"fmt"
	"time"

	"github.com/hobbyline/cardbinder/backend/models"
)

const (
	// MaxPlayerNameLength bounds the player field
	MaxPlayerNameLength = 100

	// MaxNotesLength bounds free-form notes
	MaxNotesLength = 2000

	// EarliestCardYear is the oldest plausible production year
	EarliestCardYear = 1850
)

func validateMoney(field string, value *float64, errors []models.ValidationError) []models.ValidationError {
	if value != nil && *value < 0 {
		errors = append(errors, models.ValidationError{
			Field:       field,
			Description: fmt.Sprintf("%s must not be negative", field),
			Severity:    "critical",
		})
	}
	return errors
}

func validateYear(year int, errors []models.ValidationError) []models.ValidationError {
	if year == 0 {
		return errors
	}
	if year < EarliestCardYear || year > time.Now().Year()+1 {
		errors = append(errors, models.ValidationError{
			Field:       "year",
			Description: fmt.Sprintf("year must be between %d and %d", EarliestCardYear, time.Now().Year()+1),
			Severity:    "high",
		})
	}
	return errors
}

func validateGrade(grade *float64, errors []models.ValidationError) []models.ValidationError {
	if grade != nil && (*grade < 0 || *grade > 10) {
		errors = append(errors, models.ValidationError{
			Field:       "grade",
			Description: "grade must be between 0 and 10",
			Severity:    "high",
		})
	}
	return errors
}

// ValidateCardCreateRequest validates a card creation request
func ValidateCardCreateRequest(req *models.CardCreateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Player == "" {
		errors = append(errors, models.ValidationError{
			Field:       "player",
			Description: "Player name is required",
			Severity:    "critical",
		})
	} else if len(req.Player) > MaxPlayerNameLength {
		errors = append(errors, models.ValidationError{
			Field:       "player",
			Description: fmt.Sprintf("Player name must be at most %d characters", MaxPlayerNameLength),
			Severity:    "high",
		})
	}

	errors = validateYear(req.Year, errors)
	errors = validateGrade(req.Grade, errors)
	errors = validateMoney("purchase_price", req.PurchasePrice, errors)
	errors = validateMoney("current_value", req.CurrentValue, errors)
	errors = validateMoney("sell_price", req.SellPrice, errors)

	if len(req.Notes) > MaxNotesLength {
		errors = append(errors, models.ValidationError{
			Field:       "notes",
			Description: fmt.Sprintf("Notes must be at most %d characters", MaxNotesLength),
			Severity:    "medium",
		})
	}

	return errors
}

// ValidateCardUpdateRequest validates a card update request
func ValidateCardUpdateRequest(req *models.CardUpdateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Player != nil {
		if *req.Player == "" {
			errors = append(errors, models.ValidationError{
				Field:       "player",
				Description: "Player name must not be empty",
				Severity:    "critical",
			})
		} else if len(*req.Player) > MaxPlayerNameLength {
			errors = append(errors, models.ValidationError{
				Field:       "player",
				Description: fmt.Sprintf("Player name must be at most %d characters", MaxPlayerNameLength),
				Severity:    "high",
			})
		}
	}

	if req.Year != nil {
		errors = validateYear(*req.Year, errors)
	}
	errors = validateGrade(req.Grade, errors)
	errors = validateMoney("purchase_price", req.PurchasePrice, errors)
	errors = validateMoney("current_value", req.CurrentValue, errors)
	errors = validateMoney("sell_price", req.SellPrice, errors)

	if req.Notes != nil && len(*req.Notes) > MaxNotesLength {
		errors = append(errors, models.ValidationError{
			Field:       "notes",
			Description: fmt.Sprintf("Notes must be at most %d characters", MaxNotesLength),
			Severity:    "medium",
		})
	}

	return errors
}

// ValidateCollectionCreateRequest validates a collection creation request
func ValidateCollectionCreateRequest(req *models.CollectionCreateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Name == "" {
		errors = append(errors, models.ValidationError{
			Field:       "name",
			Description: "Name is required",
			Severity:    "critical",
		})
	} else if len(req.Name) > MaxPlayerNameLength {
		errors = append(errors, models.ValidationError{
			Field:       "name",
			Description: fmt.Sprintf("Name must be at most %d characters", MaxPlayerNameLength),
			Severity:    "high",
		})
	}

	return errors
}

// ValidateCollectionUpdateRequest validates a collection update request
func ValidateCollectionUpdateRequest(req *models.CollectionUpdateRequest) []models.ValidationError {
	var errors []models.ValidationError

	if req.Name != nil {
		if *req.Name == "" {
			errors = append(errors, models.ValidationError{
				Field:       "name",
				Description: "Name must not be empty",
				Severity:    "critical",
			})
		} else if len(*req.Name) > MaxPlayerNameLength {
			errors = append(errors, models.ValidationError{
				Field:       "name",
				Description: fmt.Sprintf("Name must be at most %d characters", MaxPlayerNameLength),
				Severity:    "high",
			})
		}
	}

	return errors
}

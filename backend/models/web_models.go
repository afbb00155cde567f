package models

import (
	"time"

	"github.com/hobbyline/cardbinder/internal/database/models"
)

// UserSession represents a user session for web authentication
type UserSession struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CardDTO represents a card data transfer object for API clients
type CardDTO struct {
	ID             string     `json:"id"`
	UserID         string     `json:"user_id"`
	CollectionID   *string    `json:"collection_id,omitempty"`
	CollectionName string     `json:"collection_name,omitempty"`
	Player         string     `json:"player"`
	Team           string     `json:"team,omitempty"`
	Year           int        `json:"year,omitempty"`
	Brand          string     `json:"brand,omitempty"`
	Category       string     `json:"category,omitempty"`
	Condition      string     `json:"condition,omitempty"`
	GradingCompany string     `json:"grading_company,omitempty"`
	Grade          *float64   `json:"grade,omitempty"`
	PurchasePrice  *float64   `json:"purchase_price,omitempty"`
	CurrentValue   *float64   `json:"current_value,omitempty"`
	SellPrice      *float64   `json:"sell_price,omitempty"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	SellDate       *time.Time `json:"sell_date,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Images         []string   `json:"images,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// CollectionDTO represents a collection data transfer object
type CollectionDTO struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	IsDefault   bool      `json:"is_default"`
	CardCount   int       `json:"card_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserDTO represents a user data transfer object
type UserDTO struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// CardSearchRequest represents search parameters for cards
type CardSearchRequest struct {
	Query        string `json:"query" form:"query"`
	Player       string `json:"player" form:"player"`
	Team         string `json:"team" form:"team"`
	Year         int    `json:"year" form:"year"`
	Brand        string `json:"brand" form:"brand"`
	Category     string `json:"category" form:"category"`
	CollectionID string `json:"collection_id" form:"collection_id"`
	GradedOnly   bool   `json:"graded_only" form:"graded_only"`
	Page         int    `json:"page" form:"page"`
	Limit        int    `json:"limit" form:"limit"`
}

// Normalize clamps the pagination parameters to sane values.
func (r *CardSearchRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 50
	}
	if r.Limit > 200 {
		r.Limit = 200
	}
}

// CardCreateRequest represents a request to create a new card
type CardCreateRequest struct {
	CollectionID   *string  `json:"collection_id,omitempty"`
	Player         string   `json:"player"`
	Team           string   `json:"team"`
	Year           int      `json:"year"`
	Brand          string   `json:"brand"`
	Category       string   `json:"category"`
	Condition      string   `json:"condition"`
	GradingCompany string   `json:"grading_company"`
	Grade          *float64 `json:"grade,omitempty"`
	PurchasePrice  *float64 `json:"purchase_price,omitempty"`
	CurrentValue   *float64 `json:"current_value,omitempty"`
	SellPrice      *float64 `json:"sell_price,omitempty"`
	PurchaseDate   *string  `json:"purchase_date,omitempty"`
	SellDate       *string  `json:"sell_date,omitempty"`
	Notes          string   `json:"notes"`
	Images         []string `json:"images"`
}

// CardUpdateRequest represents a partial update; nil fields are left alone.
type CardUpdateRequest struct {
	CollectionID   *string  `json:"collection_id,omitempty"`
	Player         *string  `json:"player,omitempty"`
	Team           *string  `json:"team,omitempty"`
	Year           *int     `json:"year,omitempty"`
	Brand          *string  `json:"brand,omitempty"`
	Category       *string  `json:"category,omitempty"`
	Condition      *string  `json:"condition,omitempty"`
	GradingCompany *string  `json:"grading_company,omitempty"`
	Grade          *float64 `json:"grade,omitempty"`
	PurchasePrice  *float64 `json:"purchase_price,omitempty"`
	CurrentValue   *float64 `json:"current_value,omitempty"`
	SellPrice      *float64 `json:"sell_price,omitempty"`
	PurchaseDate   *string  `json:"purchase_date,omitempty"`
	SellDate       *string  `json:"sell_date,omitempty"`
	Notes          *string  `json:"notes,omitempty"`
	Images         []string `json:"images,omitempty"`
}

// CollectionCreateRequest represents a request to create a collection
type CollectionCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsDefault   bool   `json:"is_default"`
}

// CollectionUpdateRequest represents a partial collection update.
type CollectionUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

// LoginRequest carries the credentials for session creation.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ValidationError represents a single field validation failure
type ValidationError struct {
	Field       string `json:"field"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// DashboardStats holds the aggregate counts for the dashboard endpoint
type DashboardStats struct {
	TotalCards       int64          `json:"total_cards"`
	TotalCollections int64          `json:"total_collections"`
	TotalUsers       int64          `json:"total_users"`
	SyncPercentage   float64        `json:"sync_percentage"`
	IssueCount       int            `json:"issue_count"`
	RecentActivity   []ActivityItem `json:"recent_activity"`
}

// ActivityItem represents a single recent event for the dashboard
type ActivityItem struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// SyncStatus describes how far the local and remote stores have diverged
type SyncStatus struct {
	LocalCards        int         `json:"local_cards"`
	RemoteCards       int64       `json:"remote_cards"`
	LocalCollections  int         `json:"local_collections"`
	RemoteCollections int         `json:"remote_collections"`
	SyncPercentage    float64     `json:"sync_percentage"`
	Issues            []SyncIssue `json:"issues,omitempty"`
	CheckedAt         time.Time   `json:"checked_at"`
}

// SyncIssue is one concrete discrepancy between the stores
type SyncIssue struct {
	Kind        string `json:"kind"`
	RecordID    string `json:"record_id,omitempty"`
	Description string `json:"description"`
}

// ConvertCardToDTO converts a database card to its API representation
func ConvertCardToDTO(card *models.Card, collection *models.Collection) *CardDTO {
	dto := &CardDTO{
		ID:             card.ID,
		UserID:         card.UserID,
		CollectionID:   card.CollectionID,
		Player:         card.Player,
		Team:           card.Team,
		Year:           card.Year,
		Brand:          card.Brand,
		Category:       card.Category,
		Condition:      card.Condition,
		GradingCompany: card.GradingCompany,
		Grade:          card.Grade,
		PurchasePrice:  card.PurchasePrice,
		CurrentValue:   card.CurrentValue,
		SellPrice:      card.SellPrice,
		PurchaseDate:   card.PurchaseDate,
		SellDate:       card.SellDate,
		Notes:          card.Notes,
		Images:         card.Images,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
	if collection != nil {
		dto.CollectionName = collection.Name
	}
	return dto
}

// ConvertCollectionToDTO converts a database collection to its API representation
func ConvertCollectionToDTO(collection *models.Collection, cardCount int) *CollectionDTO {
	return &CollectionDTO{
		ID:          collection.ID,
		UserID:      collection.UserID,
		Name:        collection.Name,
		Description: collection.Description,
		Color:       collection.Color,
		Icon:        collection.Icon,
		IsDefault:   collection.IsDefault,
		CardCount:   cardCount,
		CreatedAt:   collection.CreatedAt,
		UpdatedAt:   collection.UpdatedAt,
	}
}

// ConvertUserToDTO converts a database user to its API representation
func ConvertUserToDTO(user *models.User) *UserDTO {
	return &UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card is a single tracked collectible item. Every card belongs to exactly
// one user; collection membership is optional.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID           string  `bun:"id,pk"`
	UserID       string  `bun:"user_id,notnull"`
	CollectionID *string `bun:"collection_id"`

	Player   string `bun:"player,notnull"`
	Team     string `bun:"team"`
	Year     int    `bun:"year"`
	Brand    string `bun:"brand"`
	Category string `bun:"category"`

	Condition      string   `bun:"condition"`
	GradingCompany string   `bun:"grading_company"`
	Grade          *float64 `bun:"grade"`

	PurchasePrice *float64 `bun:"purchase_price"`
	CurrentValue  *float64 `bun:"current_value"`
	SellPrice     *float64 `bun:"sell_price"`

	PurchaseDate *time.Time `bun:"purchase_date"`
	SellDate     *time.Time `bun:"sell_date"`

	Notes  string   `bun:"notes"`
	Images []string `bun:"images,type:jsonb"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Collection *Collection `bun:"rel:belongs-to,join:collection_id=id"`
}

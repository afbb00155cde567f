package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Collection is a named grouping of cards owned by one user. At most one
// collection per user carries the default flag.
type Collection struct {
	bun.BaseModel `bun:"table:collections,alias:col"`

	ID          string `bun:"id,pk"`
	UserID      string `bun:"user_id,notnull"`
	Name        string `bun:"name,notnull"`
	Description string `bun:"description"`
	Color       string `bun:"color"`
	Icon        string `bun:"icon"`
	IsDefault   bool   `bun:"is_default,notnull,default:false"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`

	// Relations
	Cards []*Card `bun:"rel:has-many,join:id=collection_id"`
}

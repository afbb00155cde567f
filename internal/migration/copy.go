package migration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hobbyline/cardbinder/internal/database/models"
)

var cardCopyColumns = []string{
	"id", "user_id", "collection_id",
	"player", "team", "year", "brand", "category",
	"condition", "grading_company", "grade",
	"purchase_price", "current_value", "sell_price",
	"purchase_date", "sell_date",
	"notes", "images",
	"created_at", "updated_at",
}

// copyCards streams a batch into the cards table via COPY. This is the fast
// path for initial loads; it has no conflict handling, so the caller falls
// back to batched inserts when rows already exist.
func (m *Migrator) copyCards(ctx context.Context, batch []*models.Card) (int, error) {
	if m.pool == nil {
		return 0, fmt.Errorf("no connection pool configured")
	}

	rows := make([][]any, 0, len(batch))
	for _, c := range batch {
		images, err := json.Marshal(c.Images)
		if err != nil {
			return 0, fmt.Errorf("encoding images for card %s: %w", c.ID, err)
		}
		rows = append(rows, []any{
			c.ID, c.UserID, c.CollectionID,
			c.Player, c.Team, c.Year, c.Brand, c.Category,
			c.Condition, c.GradingCompany, c.Grade,
			c.PurchasePrice, c.CurrentValue, c.SellPrice,
			c.PurchaseDate, c.SellDate,
			c.Notes, images,
			c.CreatedAt, c.UpdatedAt,
		})
	}

	n, err := m.pool.CopyFrom(ctx,
		pgx.Identifier{"cards"},
		cardCopyColumns,
		pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy into cards: %w", err)
	}
	return int(n), nil
}

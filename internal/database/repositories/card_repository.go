package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/uptrace/bun"

	"github.com/hobbyline/cardbinder/internal/database/models"
)

const (
	maxBatchSize        = 1000
	cardCacheSize       = 10000
	defaultQueryTimeout = 10 * time.Second
)

type CardRepository interface {
	Create(ctx context.Context, card *models.Card) error
	GetByID(ctx context.Context, id string) (*models.Card, error)
	GetAll(ctx context.Context) ([]*models.Card, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Card, error)
	GetByCollectionID(ctx context.Context, collectionID string) ([]*models.Card, error)
	Update(ctx context.Context, card *models.Card) error
	Delete(ctx context.Context, id string) error
	BulkCreate(ctx context.Context, cards []*models.Card) (int, error)
	Search(ctx context.Context, filters SearchFilters, offset, limit int) ([]*models.Card, int, error)
	Count(ctx context.Context) (int64, error)
	CountByUserID(ctx context.Context, userID string) (int64, error)
}

type cardRepository struct {
	db    *bun.DB
	cache *lru.Cache
}

func NewCardRepository(db *bun.DB) CardRepository {
	cache, _ := lru.New(cardCacheSize)
	return &cardRepository{
		db:    db,
		cache: cache,
	}
}

func (r *cardRepository) Create(ctx context.Context, card *models.Card) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	card.CreatedAt = time.Now()
	card.UpdatedAt = time.Now()

	_, err := r.db.NewInsert().
		Model(card).
		Exec(ctx)
	return err
}

func (r *cardRepository) GetByID(ctx context.Context, id string) (*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	if cached, ok := r.cache.Get(id); ok {
		return cached.(*models.Card), nil
	}

	card := new(models.Card)
	err := r.db.NewSelect().
		Model(card).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	r.cache.Add(id, card)
	return card, nil
}

func (r *cardRepository) GetAll(ctx context.Context) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Order("created_at ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user cards: %w", err)
	}
	return cards, nil
}

func (r *cardRepository) GetByCollectionID(ctx context.Context, collectionID string) ([]*models.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var cards []*models.Card
	err := r.db.NewSelect().
		Model(&cards).
		Where("collection_id = ?", collectionID).
		Order("created_at ASC").
		Scan(ctx)
	return cards, err
}

func (r *cardRepository) Update(ctx context.Context, card *models.Card) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	card.UpdatedAt = time.Now()

	_, err := r.db.NewUpdate().
		Model(card).
		WherePK().
		Exec(ctx)
	if err == nil {
		r.cache.Remove(card.ID)
	}
	return err
}

func (r *cardRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	_, err := r.db.NewDelete().
		Model((*models.Card)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err == nil {
		r.cache.Remove(id)
	}
	return err
}

// BulkCreate upserts cards by identifier so a re-run of the migration never
// duplicates rows. Returns the number of rows written.
func (r *cardRepository) BulkCreate(ctx context.Context, cards []*models.Card) (int, error) {
	if len(cards) == 0 {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	now := time.Now()
	totalWritten := 0

	for i := 0; i < len(cards); i += maxBatchSize {
		end := i + maxBatchSize
		if end > len(cards) {
			end = len(cards)
		}
		batch := cards[i:end]

		for _, card := range batch {
			if card.CreatedAt.IsZero() {
				card.CreatedAt = now
			}
			card.UpdatedAt = now
		}

		res, err := r.db.NewInsert().
			Model(&batch).
			On("CONFLICT (id) DO UPDATE").
			Set("user_id = EXCLUDED.user_id").
			Set("collection_id = EXCLUDED.collection_id").
			Set("player = EXCLUDED.player").
			Set("team = EXCLUDED.team").
			Set("year = EXCLUDED.year").
			Set("brand = EXCLUDED.brand").
			Set("category = EXCLUDED.category").
			Set("condition = EXCLUDED.condition").
			Set("grading_company = EXCLUDED.grading_company").
			Set("grade = EXCLUDED.grade").
			Set("purchase_price = EXCLUDED.purchase_price").
			Set("current_value = EXCLUDED.current_value").
			Set("sell_price = EXCLUDED.sell_price").
			Set("purchase_date = EXCLUDED.purchase_date").
			Set("sell_date = EXCLUDED.sell_date").
			Set("notes = EXCLUDED.notes").
			Set("images = EXCLUDED.images").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return totalWritten, err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return totalWritten, err
		}
		totalWritten += int(affected)
	}

	r.cache.Purge()
	return totalWritten, nil
}

func (r *cardRepository) Search(ctx context.Context, filters SearchFilters, offset, limit int) ([]*models.Card, int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	applyFilters := func(q *bun.SelectQuery) *bun.SelectQuery {
		if filters.UserID != "" {
			q = q.Where("user_id = ?", filters.UserID)
		}
		if filters.Player != "" {
			q = q.Where("LOWER(player) LIKE LOWER(?)", "%"+filters.Player+"%")
		}
		if filters.Team != "" {
			q = q.Where("LOWER(team) = LOWER(?)", filters.Team)
		}
		if filters.Year != 0 {
			q = q.Where("year = ?", filters.Year)
		}
		if filters.Brand != "" {
			q = q.Where("LOWER(brand) = LOWER(?)", filters.Brand)
		}
		if filters.Category != "" {
			q = q.Where("LOWER(category) = LOWER(?)", filters.Category)
		}
		if filters.CollectionID != "" {
			q = q.Where("collection_id = ?", filters.CollectionID)
		}
		if filters.GradedOnly {
			q = q.Where("grade IS NOT NULL")
		}
		return q
	}

	count, err := applyFilters(r.db.NewSelect().Model((*models.Card)(nil))).Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count results: %w", err)
	}

	var cards []*models.Card
	err = applyFilters(r.db.NewSelect().Model(&cards)).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch results: %w", err)
	}

	return cards, count, nil
}

func (r *cardRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Count(ctx)
	return int64(count), err
}

func (r *cardRepository) CountByUserID(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Card)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
	return int64(count), err
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/hobbyline/cardbinder/internal/database/models"
)

type CollectionRepository interface {
	Create(ctx context.Context, collection *models.Collection) error
	GetByID(ctx context.Context, id string) (*models.Collection, error)
	GetAll(ctx context.Context) ([]*models.Collection, error)
	GetByUserID(ctx context.Context, userID string) ([]*models.Collection, error)
	GetDefault(ctx context.Context, userID string) (*models.Collection, error)
	Update(ctx context.Context, collection *models.Collection) error
	SetDefault(ctx context.Context, userID, collectionID string) error
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, collection *models.Collection) error
	BulkCreate(ctx context.Context, collections []*models.Collection) error
	Count(ctx context.Context) (int64, error)
}

type collectionRepository struct {
	db *bun.DB
}

func NewCollectionRepository(db *bun.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, collection *models.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	collection.CreatedAt = time.Now()
	collection.UpdatedAt = time.Now()

	if !collection.IsDefault {
		_, err := r.db.NewInsert().Model(collection).Exec(ctx)
		return err
	}

	// A default collection displaces the previous default atomically.
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := clearDefault(ctx, tx, collection.UserID); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(collection).Exec(ctx)
		return err
	})
}

func (r *collectionRepository) GetByID(ctx context.Context, id string) (*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	collection := new(models.Collection)
	err := r.db.NewSelect().
		Model(collection).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return collection, nil
}

func (r *collectionRepository) GetAll(ctx context.Context) ([]*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var collections []*models.Collection
	err := r.db.NewSelect().
		Model(&collections).
		Order("name ASC").
		Scan(ctx)
	return collections, err
}

func (r *collectionRepository) GetByUserID(ctx context.Context, userID string) ([]*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	var collections []*models.Collection
	err := r.db.NewSelect().
		Model(&collections).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("name ASC").
		Scan(ctx)
	return collections, err
}

func (r *collectionRepository) GetDefault(ctx context.Context, userID string) (*models.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	collection := new(models.Collection)
	err := r.db.NewSelect().
		Model(collection).
		Where("user_id = ?", userID).
		Where("is_default").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return collection, nil
}

func (r *collectionRepository) Update(ctx context.Context, collection *models.Collection) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	collection.UpdatedAt = time.Now()
	_, err := r.db.NewUpdate().
		Model(collection).
		WherePK().
		Exec(ctx)
	return err
}

// SetDefault flips the default flag to the given collection. Unset and set
// run in one transaction so the per-user invariant cannot be observed
// broken, even across a crash.
func (r *collectionRepository) SetDefault(ctx context.Context, userID, collectionID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := clearDefault(ctx, tx, userID); err != nil {
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Collection)(nil)).
			Set("is_default = TRUE").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", collectionID).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func clearDefault(ctx context.Context, tx bun.Tx, userID string) error {
	_, err := tx.NewUpdate().
		Model((*models.Collection)(nil)).
		Set("is_default = FALSE").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Where("is_default").
		Exec(ctx)
	return err
}

// Delete removes a collection only when it has no member cards.
func (r *collectionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().
			Model((*models.Card)(nil)).
			Where("collection_id = ?", id).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count member cards: %w", err)
		}
		if count > 0 {
			return ErrCollectionNotEmpty
		}

		_, err = tx.NewDelete().
			Model((*models.Collection)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		return err
	})
}

// Upsert writes a collection by identifier, replacing an existing row. The
// migration driver depends on this being safe to repeat.
func (r *collectionRepository) Upsert(ctx context.Context, collection *models.Collection) error {
	return r.BulkCreate(ctx, []*models.Collection{collection})
}

func (r *collectionRepository) BulkCreate(ctx context.Context, collections []*models.Collection) error {
	if len(collections) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	now := time.Now()
	for _, collection := range collections {
		if collection.CreatedAt.IsZero() {
			collection.CreatedAt = now
		}
		collection.UpdatedAt = now
	}

	_, err := r.db.NewInsert().
		Model(&collections).
		On("CONFLICT (id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("color = EXCLUDED.color").
		Set("icon = EXCLUDED.icon").
		Set("is_default = EXCLUDED.is_default").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *collectionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultQueryTimeout)
	defer cancel()

	count, err := r.db.NewSelect().
		Model((*models.Collection)(nil)).
		Count(ctx)
	return int64(count), err
}

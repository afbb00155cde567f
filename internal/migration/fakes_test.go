package migration

import (
	"context"
	"sync"

	"github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
)

// In-memory repository fakes. Writes are keyed by identifier so upsert
// semantics match the real repositories.

type fakeUserRepo struct {
	mu        sync.Mutex
	users     map[string]*models.User
	ensureErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	return f.Ensure(context.Background(), user)
}

func (f *fakeUserRepo) Ensure(_ context.Context, user *models.User) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	return f.Ensure(context.Background(), user)
}

func (f *fakeUserRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

type fakeCollectionRepo struct {
	mu          sync.Mutex
	collections map[string]*models.Collection
	upsertErrs  map[string]error
}

func newFakeCollectionRepo() *fakeCollectionRepo {
	return &fakeCollectionRepo{
		collections: make(map[string]*models.Collection),
		upsertErrs:  make(map[string]error),
	}
}

func (f *fakeCollectionRepo) Create(_ context.Context, collection *models.Collection) error {
	return f.Upsert(context.Background(), collection)
}

func (f *fakeCollectionRepo) GetByID(_ context.Context, id string) (*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	collection, ok := f.collections[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return collection, nil
}

func (f *fakeCollectionRepo) GetAll(_ context.Context) ([]*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Collection, 0, len(f.collections))
	for _, c := range f.collections {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCollectionRepo) GetByUserID(_ context.Context, userID string) ([]*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Collection
	for _, c := range f.collections {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCollectionRepo) GetDefault(_ context.Context, userID string) (*models.Collection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.collections {
		if c.UserID == userID && c.IsDefault {
			return c, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeCollectionRepo) Update(_ context.Context, collection *models.Collection) error {
	return f.Upsert(context.Background(), collection)
}

func (f *fakeCollectionRepo) SetDefault(_ context.Context, userID, collectionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.collections {
		if c.UserID == userID {
			c.IsDefault = c.ID == collectionID
		}
	}
	return nil
}

func (f *fakeCollectionRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, id)
	return nil
}

func (f *fakeCollectionRepo) Upsert(_ context.Context, collection *models.Collection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upsertErrs[collection.ID]; err != nil {
		return err
	}
	f.collections[collection.ID] = collection
	return nil
}

func (f *fakeCollectionRepo) BulkCreate(ctx context.Context, collections []*models.Collection) error {
	for _, c := range collections {
		if err := f.Upsert(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeCollectionRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.collections)), nil
}

type fakeCardRepo struct {
	mu         sync.Mutex
	cards      map[string]*models.Card
	batchSizes []int
	bulkErr    error
	countErr   error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: make(map[string]*models.Card)}
}

func (f *fakeCardRepo) Create(_ context.Context, card *models.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cards[card.ID] = card
	return nil
}

func (f *fakeCardRepo) GetByID(_ context.Context, id string) (*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return card, nil
}

func (f *fakeCardRepo) GetAll(_ context.Context) ([]*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Card, 0, len(f.cards))
	for _, c := range f.cards {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCardRepo) GetByUserID(_ context.Context, userID string) ([]*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Card
	for _, c := range f.cards {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) GetByCollectionID(_ context.Context, collectionID string) ([]*models.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Card
	for _, c := range f.cards {
		if c.CollectionID != nil && *c.CollectionID == collectionID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCardRepo) Update(_ context.Context, card *models.Card) error {
	return f.Create(context.Background(), card)
}

func (f *fakeCardRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cards, id)
	return nil
}

func (f *fakeCardRepo) BulkCreate(_ context.Context, cards []*models.Card) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchSizes = append(f.batchSizes, len(cards))
	if f.bulkErr != nil {
		return 0, f.bulkErr
	}
	for _, c := range cards {
		f.cards[c.ID] = c
	}
	return len(cards), nil
}

func (f *fakeCardRepo) Search(_ context.Context, filters repositories.SearchFilters, offset, limit int) ([]*models.Card, int, error) {
	cards, _ := f.GetByUserID(context.Background(), filters.UserID)
	if offset >= len(cards) {
		return nil, len(cards), nil
	}
	end := offset + limit
	if end > len(cards) {
		end = len(cards)
	}
	return cards[offset:end], len(cards), nil
}

func (f *fakeCardRepo) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.cards)), nil
}

func (f *fakeCardRepo) CountByUserID(_ context.Context, userID string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	cards, _ := f.GetByUserID(context.Background(), userID)
	return int64(len(cards)), nil
}

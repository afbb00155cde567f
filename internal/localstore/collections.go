package localstore

import (
	"database/sql"
	"errors"
	"fmt"
)

// Collection is a collection row in the browser-era layout.
type Collection struct {
	ID          string
	UserID      string
	Name        string
	Description string
	Color       string
	Icon        string
	IsDefault   bool
	CreatedAt   string
	UpdatedAt   string
}

const collectionColumns = `id, userId, name, description, color, icon, isDefault, createdAt, updatedAt`

func scanCollection(scanner interface{ Scan(...any) error }) (*Collection, error) {
	c := new(Collection)
	var desc, color, icon sql.NullString
	var isDefault int
	err := scanner.Scan(&c.ID, &c.UserID, &c.Name, &desc, &color, &icon, &isDefault, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Description = desc.String
	c.Color = color.String
	c.Icon = icon.String
	c.IsDefault = isDefault != 0
	return c, nil
}

func (s *Store) ListCollections() ([]*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ` + collectionColumns + ` FROM collections ORDER BY createdAt ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	defer rows.Close()

	var collections []*Collection
	for rows.Next() {
		collection, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		collections = append(collections, collection)
	}
	return collections, rows.Err()
}

func (s *Store) GetCollection(id string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT `+collectionColumns+` FROM collections WHERE id = ?`, id)
	collection, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return collection, err
}

// PutCollection upserts a collection by identifier, last write wins.
func (s *Store) PutCollection(c *Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	isDefault := 0
	if c.IsDefault {
		isDefault = 1
	}

	_, err := s.db.Exec(`INSERT INTO collections (`+collectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			userId = excluded.userId,
			name = excluded.name,
			description = excluded.description,
			color = excluded.color,
			icon = excluded.icon,
			isDefault = excluded.isDefault,
			createdAt = excluded.createdAt,
			updatedAt = excluded.updatedAt`,
		c.ID, c.UserID, c.Name, c.Description, c.Color, c.Icon, isDefault, c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *Store) CountCollections() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM collections`).Scan(&count)
	return count, err
}

func (s *Store) DeleteAllCollections() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM collections`)
	return err
}

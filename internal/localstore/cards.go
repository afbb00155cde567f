package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Card is a card row as the browser app stored it: camelCase columns,
// ISO-8601 date strings, image URLs as a JSON array.
type Card struct {
	ID             string
	UserID         string
	CollectionID   *string
	Player         string
	Team           string
	Year           int
	Brand          string
	Category       string
	Condition      string
	GradingCompany string
	Grade          *float64
	PurchasePrice  *float64
	CurrentValue   *float64
	SellPrice      *float64
	PurchaseDate   *string
	SellDate       *string
	Notes          string
	Images         []string
	CreatedAt      string
	UpdatedAt      string
}

const cardColumns = `id, userId, collectionId, playerName, team, cardYear, brand, category,
	condition, gradingCompany, grade, purchasePrice, currentValue, sellPrice,
	purchaseDate, sellDate, notes, imageUrls, createdAt, updatedAt`

func scanCard(scanner interface{ Scan(...any) error }) (*Card, error) {
	c := new(Card)
	var (
		team, brand, category, condition, grading, notes sql.NullString
		year                                             sql.NullInt64
		images                                           sql.NullString
	)
	err := scanner.Scan(
		&c.ID, &c.UserID, &c.CollectionID, &c.Player, &team, &year, &brand, &category,
		&condition, &grading, &c.Grade, &c.PurchasePrice, &c.CurrentValue, &c.SellPrice,
		&c.PurchaseDate, &c.SellDate, &notes, &images, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Team = team.String
	c.Year = int(year.Int64)
	c.Brand = brand.String
	c.Category = category.String
	c.Condition = condition.String
	c.GradingCompany = grading.String
	c.Notes = notes.String
	if images.Valid && images.String != "" {
		if err := json.Unmarshal([]byte(images.String), &c.Images); err != nil {
			return nil, fmt.Errorf("card %s has malformed imageUrls: %w", c.ID, err)
		}
	}
	return c, nil
}

// ListCards returns every card in the store, oldest first.
func (s *Store) ListCards() ([]*Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT ` + cardColumns + ` FROM cards ORDER BY createdAt ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []*Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *Store) GetCard(id string) (*Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return card, err
}

// PutCard upserts a card by identifier, last write wins.
func (s *Store) PutCard(c *Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	images, err := json.Marshal(c.Images)
	if err != nil {
		return fmt.Errorf("failed to encode imageUrls: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			userId = excluded.userId,
			collectionId = excluded.collectionId,
			playerName = excluded.playerName,
			team = excluded.team,
			cardYear = excluded.cardYear,
			brand = excluded.brand,
			category = excluded.category,
			condition = excluded.condition,
			gradingCompany = excluded.gradingCompany,
			grade = excluded.grade,
			purchasePrice = excluded.purchasePrice,
			currentValue = excluded.currentValue,
			sellPrice = excluded.sellPrice,
			purchaseDate = excluded.purchaseDate,
			sellDate = excluded.sellDate,
			notes = excluded.notes,
			imageUrls = excluded.imageUrls,
			createdAt = excluded.createdAt,
			updatedAt = excluded.updatedAt`,
		c.ID, c.UserID, c.CollectionID, c.Player, c.Team, c.Year, c.Brand, c.Category,
		c.Condition, c.GradingCompany, c.Grade, c.PurchasePrice, c.CurrentValue, c.SellPrice,
		c.PurchaseDate, c.SellDate, c.Notes, string(images), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

func (s *Store) CountCards() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM cards`).Scan(&count)
	return count, err
}

func (s *Store) DeleteAllCards() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM cards`)
	return err
}

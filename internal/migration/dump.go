package migration

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/hobbyline/cardbinder/internal/database/models"
)

// Dump document shapes, matching the field names the old mongodump exports
// used before the app moved fully into the browser.

type DumpUser struct {
	ID       string `bson:"_id"`
	Username string `bson:"username"`
	Email    string `bson:"email"`
}

type DumpCollection struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	Color       string    `bson:"color,omitempty"`
	Icon        string    `bson:"icon,omitempty"`
	IsDefault   bool      `bson:"isDefault"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type DumpCard struct {
	ID             string     `bson:"_id"`
	UserID         string     `bson:"userId"`
	CollectionID   *string    `bson:"collectionId,omitempty"`
	Player         string     `bson:"playerName"`
	Team           string     `bson:"team,omitempty"`
	Year           int        `bson:"cardYear,omitempty"`
	Brand          string     `bson:"brand,omitempty"`
	Category       string     `bson:"category,omitempty"`
	Condition      string     `bson:"condition,omitempty"`
	GradingCompany string     `bson:"gradingCompany,omitempty"`
	Grade          *float64   `bson:"grade,omitempty"`
	PurchasePrice  *float64   `bson:"purchasePrice,omitempty"`
	CurrentValue   *float64   `bson:"currentValue,omitempty"`
	SellPrice      *float64   `bson:"sellPrice,omitempty"`
	PurchaseDate   *time.Time `bson:"purchaseDate,omitempty"`
	SellDate       *time.Time `bson:"sellDate,omitempty"`
	Notes          string     `bson:"notes,omitempty"`
	Images         []string   `bson:"imageUrls,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
}

// DumpImportResult summarizes an ImportDump run.
type DumpImportResult struct {
	UsersImported       int      `json:"users_imported"`
	CollectionsImported int      `json:"collections_imported"`
	CardsImported       int      `json:"cards_imported"`
	Errors              []string `json:"errors"`
}

// readBSONFile reads a mongodump-style file of concatenated BSON documents,
// calling decode for each one. Each document begins with its own
// little-endian int32 length, length included.
func readBSONFile(path string, decode func(doc []byte) error) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dump file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		lengthBytes := make([]byte, 4)
		if _, err := io.ReadFull(reader, lengthBytes); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("reading document length: %w", err)
		}

		length := int32(binary.LittleEndian.Uint32(lengthBytes))
		if length <= 4 {
			return fmt.Errorf("invalid document length: %d", length)
		}

		docBytes := make([]byte, length-4)
		if _, err := io.ReadFull(reader, docBytes); err != nil {
			return fmt.Errorf("reading document bytes: %w", err)
		}

		if err := decode(append(lengthBytes, docBytes...)); err != nil {
			return err
		}
	}
}

// ImportDump loads a mongodump export (users.bson, collections.bson,
// cards.bson) straight into the remote store. Missing files are skipped so
// partial dumps still import. Writes are upserts, so re-importing the same
// dump is harmless.
func (m *Migrator) ImportDump(ctx context.Context, dir string) (*DumpImportResult, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer m.running.Store(false)

	result := &DumpImportResult{Errors: []string{}}

	m.logger.Info("importing dump",
		slog.String("type", "migration"),
		slog.String("dir", dir))

	if err := m.importDumpUsers(ctx, filepath.Join(dir, "users.bson"), result); err != nil {
		return result, err
	}
	if err := m.importDumpCollections(ctx, filepath.Join(dir, "collections.bson"), result); err != nil {
		return result, err
	}
	if err := m.importDumpCards(ctx, filepath.Join(dir, "cards.bson"), result); err != nil {
		return result, err
	}

	m.logger.Info("dump import finished",
		slog.String("type", "migration"),
		slog.Int("users", result.UsersImported),
		slog.Int("collections", result.CollectionsImported),
		slog.Int("cards", result.CardsImported),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func (m *Migrator) importDumpUsers(ctx context.Context, path string, result *DumpImportResult) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return readBSONFile(path, func(doc []byte) error {
		var du DumpUser
		if err := bson.Unmarshal(doc, &du); err != nil {
			return fmt.Errorf("decoding user document: %w", err)
		}
		if du.ID == "" {
			result.Errors = append(result.Errors, "user document with empty _id")
			return nil
		}
		user := &models.User{ID: du.ID, Username: du.Username, Email: du.Email}
		if err := m.users.Ensure(ctx, user); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("user %s: %v", du.ID, err))
			return nil
		}
		result.UsersImported++
		return nil
	})
}

func (m *Migrator) importDumpCollections(ctx context.Context, path string, result *DumpImportResult) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	return readBSONFile(path, func(doc []byte) error {
		var dc DumpCollection
		if err := bson.Unmarshal(doc, &dc); err != nil {
			return fmt.Errorf("decoding collection document: %w", err)
		}
		if dc.ID == "" || dc.UserID == "" {
			result.Errors = append(result.Errors, "collection document missing _id or userId")
			return nil
		}
		collection := &models.Collection{
			ID:          dc.ID,
			UserID:      dc.UserID,
			Name:        dc.Name,
			Description: dc.Description,
			Color:       dc.Color,
			Icon:        dc.Icon,
			IsDefault:   dc.IsDefault,
			CreatedAt:   dc.CreatedAt,
			UpdatedAt:   dc.UpdatedAt,
		}
		if err := m.collections.Upsert(ctx, collection); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("collection %s: %v", dc.ID, err))
			return nil
		}
		result.CollectionsImported++
		return nil
	})
}

func (m *Migrator) importDumpCards(ctx context.Context, path string, result *DumpImportResult) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	batch := make([]*models.Card, 0, m.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := m.cards.BulkCreate(ctx, batch)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("cards batch: %v", err))
		}
		result.CardsImported += n
		batch = batch[:0]
	}

	err := readBSONFile(path, func(doc []byte) error {
		var dc DumpCard
		if err := bson.Unmarshal(doc, &dc); err != nil {
			return fmt.Errorf("decoding card document: %w", err)
		}
		if dc.ID == "" || dc.UserID == "" {
			result.Errors = append(result.Errors, "card document missing _id or userId")
			return nil
		}
		batch = append(batch, &models.Card{
			ID:             dc.ID,
			UserID:         dc.UserID,
			CollectionID:   dc.CollectionID,
			Player:         dc.Player,
			Team:           dc.Team,
			Year:           dc.Year,
			Brand:          dc.Brand,
			Category:       dc.Category,
			Condition:      dc.Condition,
			GradingCompany: dc.GradingCompany,
			Grade:          dc.Grade,
			PurchasePrice:  dc.PurchasePrice,
			CurrentValue:   dc.CurrentValue,
			SellPrice:      dc.SellPrice,
			PurchaseDate:   dc.PurchaseDate,
			SellDate:       dc.SellDate,
			Notes:          dc.Notes,
			Images:         dc.Images,
			CreatedAt:      dc.CreatedAt,
			UpdatedAt:      dc.UpdatedAt,
		})
		if len(batch) >= m.batchSize {
			flush()
		}
		return nil
	})
	flush()
	return err
}

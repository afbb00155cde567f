package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
	"github.com/hobbyline/cardbinder/internal/localstore"
)

const defaultBatchSize = 100

// Migrator drives a one-shot transfer from the embedded local store to the
// remote database. A Migrator is safe for concurrent use; only one run may
// execute at a time.
type Migrator struct {
	local       *localstore.Store
	users       repositories.UserRepository
	collections repositories.CollectionRepository
	cards       repositories.CardRepository

	pool      *pgxpool.Pool
	useCopy   bool
	batchSize int
	reportDir string
	progress  ProgressFunc
	logger    *slog.Logger

	running    atomic.Bool
	lastResult atomic.Pointer[Result]
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithBatchSize overrides the card batch size.
func WithBatchSize(n int) Option {
	return func(m *Migrator) {
		if n > 0 {
			m.batchSize = n
		}
	}
}

// WithProgress installs a callback invoked after each completed stage.
func WithProgress(fn ProgressFunc) Option {
	return func(m *Migrator) { m.progress = fn }
}

// WithReportDir sets where run reports are written.
func WithReportDir(dir string) Option {
	return func(m *Migrator) { m.reportDir = dir }
}

// WithCopyPool enables the COPY fast path for card loads using the given
// connection pool.
func WithCopyPool(pool *pgxpool.Pool) Option {
	return func(m *Migrator) {
		m.pool = pool
		m.useCopy = pool != nil
	}
}

func NewMigrator(
	local *localstore.Store,
	users repositories.UserRepository,
	collections repositories.CollectionRepository,
	cards repositories.CardRepository,
	logger *slog.Logger,
	opts ...Option,
) *Migrator {
	m := &Migrator{
		local:       local,
		users:       users,
		collections: collections,
		cards:       cards,
		batchSize:   defaultBatchSize,
		reportDir:   ".",
		logger:      logger,
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Running reports whether a run is currently executing.
func (m *Migrator) Running() bool {
	return m.running.Load()
}

// LastResult returns the result of the most recent run, or nil if none has
// completed yet.
func (m *Migrator) LastResult() *Result {
	return m.lastResult.Load()
}

func (m *Migrator) report(step string, percent int) {
	m.logger.Info("migration progress",
		slog.String("type", "migration"),
		slog.String("step", step),
		slog.Int("percent", percent))
	if m.progress != nil {
		m.progress(step, percent)
	}
}

// Migrate executes the four-stage transfer: profile, collections, cards,
// verification. The run continues past per-record failures and collects
// them; only a missing or unwritable user profile aborts outright. Re-running
// after a partial failure is safe because every write is an upsert keyed on
// the record identifier.
func (m *Migrator) Migrate(ctx context.Context) (*Result, error) {
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer m.running.Store(false)

	result := &Result{
		Errors:    []string{},
		StartedAt: time.Now(),
	}
	stats := &Stats{StartTime: result.StartedAt}

	m.logger.Info("starting migration",
		slog.String("type", "migration"),
		slog.String("source", m.local.Path()),
		slog.Int("batch_size", m.batchSize))

	// Stage 1: user profile. Without an owner row, every card and
	// collection insert would violate a foreign key, so this failure
	// aborts the run.
	if err := m.migrateUser(ctx, result, stats); err != nil {
		result.FinishedAt = time.Now()
		stats.EndTime = result.FinishedAt
		m.writeReport(result, stats)
		m.lastResult.Store(result)
		return result, fmt.Errorf("user profile: %w", err)
	}
	m.report("user profile", 25)

	m.migrateCollections(ctx, result, stats)
	m.report("collections", 50)

	m.migrateCards(ctx, result, stats)
	m.report("cards", 75)

	m.verifyCounts(ctx, result)
	m.report("verification", 100)

	result.Success = len(result.Errors) == 0
	result.FinishedAt = time.Now()
	stats.EndTime = result.FinishedAt
	m.writeReport(result, stats)
	m.lastResult.Store(result)

	m.logger.Info("migration finished",
		slog.String("type", "migration"),
		slog.Bool("success", result.Success),
		slog.Int("cards", result.CardsMigrated),
		slog.Int("collections", result.CollectionsMigrated),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("took", result.FinishedAt.Sub(result.StartedAt)))

	if result.Success {
		return result, nil
	}
	return result, fmt.Errorf("migration completed with %d errors", len(result.Errors))
}

func (m *Migrator) migrateUser(ctx context.Context, result *Result, stats *Stats) error {
	ts := stats.table("users")

	profile, err := m.local.GetProfile()
	if err != nil {
		stats.recordError("users", "", err)
		result.Errors = append(result.Errors, fmt.Sprintf("users: %v", err))
		return err
	}
	ts.Processed++

	user := &models.User{
		ID:       profile.ID,
		Username: profile.Username,
		Email:    profile.Email,
	}
	if err := m.users.Ensure(ctx, user); err != nil {
		stats.recordError("users", profile.ID, err)
		result.Errors = append(result.Errors, fmt.Sprintf("users: %v", err))
		return err
	}

	ts.Successful++
	stats.TotalProcessed++
	result.UsersMigrated = 1
	return nil
}

func (m *Migrator) migrateCollections(ctx context.Context, result *Result, stats *Stats) {
	ts := stats.table("collections")

	locals, err := m.local.ListCollections()
	if err != nil {
		stats.recordError("collections", "", err)
		result.Errors = append(result.Errors, fmt.Sprintf("collections: %v", err))
		return
	}

	for _, lc := range locals {
		ts.Processed++
		stats.TotalProcessed++

		collection, err := convertCollection(lc)
		if err != nil {
			stats.recordError("collections", lc.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("collections: %v", err))
			continue
		}
		if err := m.collections.Upsert(ctx, collection); err != nil {
			stats.recordError("collections", lc.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("collection %s: %v", lc.ID, err))
			continue
		}
		ts.Successful++
		result.CollectionsMigrated++
	}
}

func (m *Migrator) migrateCards(ctx context.Context, result *Result, stats *Stats) {
	ts := stats.table("cards")

	locals, err := m.local.ListCards()
	if err != nil {
		stats.recordError("cards", "", err)
		result.Errors = append(result.Errors, fmt.Sprintf("cards: %v", err))
		return
	}

	batch := make([]*models.Card, 0, m.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		n, err := m.loadCards(ctx, batch)
		if err != nil {
			stats.recordError("cards", fmt.Sprintf("batch of %d", len(batch)), err)
			result.Errors = append(result.Errors, fmt.Sprintf("cards batch: %v", err))
		}
		ts.Successful += n
		result.CardsMigrated += n
		batch = batch[:0]
	}

	for _, lc := range locals {
		ts.Processed++
		stats.TotalProcessed++

		card, err := convertCard(lc)
		if err != nil {
			stats.recordError("cards", lc.ID, err)
			result.Errors = append(result.Errors, fmt.Sprintf("cards: %v", err))
			ts.Skipped++
			stats.TotalSkipped++
			continue
		}
		batch = append(batch, card)
		if len(batch) >= m.batchSize {
			flush()
		}
	}
	flush()
}

// loadCards writes one batch, preferring COPY when a pool was supplied.
// COPY cannot upsert, so on conflict errors it falls back to the batched
// insert path.
func (m *Migrator) loadCards(ctx context.Context, batch []*models.Card) (int, error) {
	if m.useCopy {
		n, err := m.copyCards(ctx, batch)
		if err == nil {
			return n, nil
		}
		m.logger.Warn("copy fast path failed, falling back to batched insert",
			slog.String("type", "migration"),
			slog.String("error", err.Error()))
	}
	return m.cards.BulkCreate(ctx, batch)
}

func (m *Migrator) verifyCounts(ctx context.Context, result *Result) {
	localCount, err := m.local.CountCards()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("verify: %v", err))
		return
	}

	profile, err := m.local.GetProfile()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("verify: %v", err))
		return
	}

	remoteCount, err := m.cards.CountByUserID(ctx, profile.ID)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("verify: %v", err))
		return
	}

	if int64(localCount) != remoteCount {
		result.Errors = append(result.Errors, fmt.Sprintf(
			"verify: local store has %d cards, remote has %d", localCount, remoteCount))
	}
}

// Verify compares row counts between the two stores without writing
// anything.
func (m *Migrator) Verify(ctx context.Context) (*VerifyReport, error) {
	localCards, err := m.local.CountCards()
	if err != nil {
		return nil, fmt.Errorf("counting local cards: %w", err)
	}
	localCollections, err := m.local.CountCollections()
	if err != nil {
		return nil, fmt.Errorf("counting local collections: %w", err)
	}

	profile, err := m.local.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("reading local profile: %w", err)
	}

	remoteCards, err := m.cards.CountByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("counting remote cards: %w", err)
	}
	remoteCollections, err := m.collections.GetByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("listing remote collections: %w", err)
	}

	report := &VerifyReport{
		LocalCards:        localCards,
		RemoteCards:       remoteCards,
		LocalCollections:  localCollections,
		RemoteCollections: len(remoteCollections),
	}
	report.InSync = int64(report.LocalCards) == report.RemoteCards &&
		report.LocalCollections == report.RemoteCollections
	return report, nil
}

// ClearLocal deletes every card and collection from the local store. The
// profile row is kept so the store remains usable. Refuses to run without
// confirm.
func (m *Migrator) ClearLocal(ctx context.Context, confirm bool) error {
	if !confirm {
		return ErrNotConfirmed
	}
	if m.running.Load() {
		return ErrRunInProgress
	}

	if err := m.local.DeleteAllCards(); err != nil {
		return fmt.Errorf("clearing local cards: %w", err)
	}
	if err := m.local.DeleteAllCollections(); err != nil {
		return fmt.Errorf("clearing local collections: %w", err)
	}

	m.logger.Info("local store cleared",
		slog.String("type", "migration"),
		slog.String("path", m.local.Path()))
	return nil
}

// Rollback copies the remote data for the local profile's user back into
// the local store, overwriting rows that share an identifier.
func (m *Migrator) Rollback(ctx context.Context, confirm bool) (*RollbackResult, error) {
	if !confirm {
		return nil, ErrNotConfirmed
	}
	if !m.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer m.running.Store(false)

	profile, err := m.local.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("reading local profile: %w", err)
	}

	result := &RollbackResult{Errors: []string{}}

	collections, err := m.collections.GetByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("listing remote collections: %w", err)
	}
	for _, c := range collections {
		if err := m.local.PutCollection(collectionToLocal(c)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("collection %s: %v", c.ID, err))
			continue
		}
		result.CollectionsRestored++
	}

	cards, err := m.cards.GetByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("listing remote cards: %w", err)
	}
	for _, c := range cards {
		if err := m.local.PutCard(cardToLocal(c)); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("card %s: %v", c.ID, err))
			continue
		}
		result.CardsRestored++
	}

	m.logger.Info("rollback finished",
		slog.String("type", "migration"),
		slog.Int("cards", result.CardsRestored),
		slog.Int("collections", result.CollectionsRestored),
		slog.Int("errors", len(result.Errors)))
	return result, nil
}

func (m *Migrator) writeReport(result *Result, stats *Stats) {
	report := struct {
		Result *Result `json:"result"`
		Stats  *Stats  `json:"stats"`
	}{result, stats}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		m.logger.Error("marshaling migration report",
			slog.String("type", "migration"),
			slog.String("error", err.Error()))
		return
	}

	name := fmt.Sprintf("migration_report_%s.json", result.StartedAt.Format("20060102_150405"))
	path := filepath.Join(m.reportDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		m.logger.Error("writing migration report",
			slog.String("type", "migration"),
			slog.String("path", path),
			slog.String("error", err.Error()))
		return
	}
	m.logger.Info("migration report written",
		slog.String("type", "migration"),
		slog.String("path", path))
}

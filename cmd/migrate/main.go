// Package main provides the cardbinder-migrate operator CLI: a one-shot
// driver that moves the embedded local store into the hosted database.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/internal/config"
	"github.com/hobbyline/cardbinder/internal/database"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
	"github.com/hobbyline/cardbinder/internal/localstore"
	"github.com/hobbyline/cardbinder/internal/logger"
	"github.com/hobbyline/cardbinder/internal/migration"
)

var (
	// configPath is set by the --config flag.
	configPath string

	// flagYes confirms destructive operations.
	flagYes bool

	// flagUseCopy enables the COPY fast path for card loads.
	flagUseCopy bool

	// customHandler is installed before config loads so early failures are
	// still logged; setup reconfigures it from the [log] section.
	customHandler *logger.CustomHandler
)

func main() {
	customHandler = logger.NewHandler("cardbinder-migrate")
	slog.SetDefault(slog.New(customHandler))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cardbinder-migrate",
	Short: "Move the local card store into the hosted database",
	Long: `cardbinder-migrate drives the one-shot transfer of a local cardbinder
store (embedded SQLite) into the hosted PostgreSQL database. It also offers
verification, rollback, and a prerequisite check for the remote schema.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "path to the configuration file")

	runCmd.Flags().BoolVar(&flagUseCopy, "use-copy", false, "use COPY for card loads (faster on first runs)")
	clearLocalCmd.Flags().BoolVar(&flagYes, "yes", false, "confirm the local wipe")
	rollbackCmd.Flags().BoolVar(&flagYes, "yes", false, "confirm overwriting local rows")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(clearLocalCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(importDumpCmd)
}

// env bundles the stores and driver every subcommand needs.
type env struct {
	cfg      *config.Config
	db       *database.DB
	local    *localstore.Store
	migrator *migration.Migrator
}

func (e *env) close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.local != nil {
		if err := e.local.Close(); err != nil {
			slog.Error("Failed to close local store", slog.String("error", err.Error()))
		}
	}
}

// setup loads config and connects both stores.
func setup(ctx context.Context, opts ...migration.Option) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	customHandler.Configure(cfg.Log.Level, cfg.Log.AddSource)

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := database.New(connectCtx, database.DBConfig{
		Host:         cfg.DB.Host,
		Port:         cfg.DB.Port,
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Database:     cfg.DB.Database,
		PoolSize:     cfg.DB.PoolSize,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxLifetime:  cfg.DB.MaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	local, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open local store %s: %w", cfg.Local.Path, err)
	}

	repos := webmodels.NewRepositories(
		repositories.NewUserRepository(db.BunDB()),
		repositories.NewCardRepository(db.BunDB()),
		repositories.NewCollectionRepository(db.BunDB()),
	)

	baseOpts := []migration.Option{
		migration.WithBatchSize(cfg.Migration.BatchSize),
		migration.WithReportDir(cfg.Migration.ReportDir),
	}
	if flagUseCopy || cfg.Migration.UseCopy {
		baseOpts = append(baseOpts, migration.WithCopyPool(db.Pool()))
	}
	baseOpts = append(baseOpts, opts...)

	migrator := migration.NewMigrator(
		local,
		repos.User,
		repos.Collection,
		repos.Card,
		slog.Default(),
		baseOpts...,
	)

	return &env{cfg: cfg, db: db, local: local, migrator: migrator}, nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/hobbyline/cardbinder/backend/handlers"
	"github.com/hobbyline/cardbinder/backend/middleware"
	webmodels "github.com/hobbyline/cardbinder/backend/models"
	webservices "github.com/hobbyline/cardbinder/backend/services"
	"github.com/hobbyline/cardbinder/internal/config"
	"github.com/hobbyline/cardbinder/internal/database"
	"github.com/hobbyline/cardbinder/internal/database/repositories"
	"github.com/hobbyline/cardbinder/internal/localstore"
	"github.com/hobbyline/cardbinder/internal/logger"
	"github.com/hobbyline/cardbinder/internal/migration"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the configuration file")
	flag.Parse()

	customHandler := logger.NewHandler("cardbinder")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting cardbinder API",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("type", "sys"))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	customHandler.Configure(cfg.Log.Level, cfg.Log.AddSource)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...", slog.String("type", "db"))
	db, err := database.New(ctx, database.DBConfig{
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
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database ready", slog.String("type", "db"))

	local, err := localstore.Open(cfg.Local.Path)
	if err != nil {
		slog.Error("Failed to open local store",
			slog.String("path", cfg.Local.Path),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := webmodels.NewRepositories(
		repositories.NewUserRepository(db.BunDB()),
		repositories.NewCardRepository(db.BunDB()),
		repositories.NewCollectionRepository(db.BunDB()),
	)

	cardMgmtService := webservices.NewCardManagementService(repos)
	collectionService := webservices.NewCollectionService(repos)
	syncMgrService := webservices.NewSyncManagerService(repos, local)
	searchService := webservices.NewSearchService(cardMgmtService)
	sessionService := webservices.NewSessionService(cfg.Web.SessionSecret, cfg.Web.Environment)

	var imageService *webservices.ImageService
	if cfg.Spaces.Enabled() {
		imageService, err = webservices.NewImageService(ctx,
			cfg.Spaces.Key, cfg.Spaces.Secret, cfg.Spaces.Region, cfg.Spaces.Bucket, cfg.Spaces.CardRoot)
		if err != nil {
			slog.Error("Failed to set up image storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slog.Info("Image storage ready",
			slog.String("bucket", cfg.Spaces.Bucket),
			slog.String("region", cfg.Spaces.Region),
			slog.String("type", "sys"))
	}

	migrator := migration.NewMigrator(
		local,
		repos.User,
		repos.Collection,
		repos.Card,
		slog.Default(),
		migration.WithBatchSize(cfg.Migration.BatchSize),
		migration.WithReportDir(cfg.Migration.ReportDir),
	)

	app := fiber.New(fiber.Config{
		AppName:      "cardbinder API",
		ServerHeader: "cardbinder",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Web.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With,Cookie",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		DB:                db,
		Repos:             repos,
		CardMgmtService:   cardMgmtService,
		CollectionService: collectionService,
		SyncMgrService:    syncMgrService,
		SearchService:     searchService,
		SessionService:    sessionService,
		ImageService:      imageService,
		Migrator:          migrator,
		Version:           version,
		Commit:            commit,
	}

	setupRoutes(app, webApp, sessionService)

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	slog.Info("Starting server", slog.String("address", address), slog.String("type", "sys"))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down server...", slog.String("type", "sys"))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	db.Close()
	if err := local.Close(); err != nil {
		slog.Error("Local store close error", slog.String("error", err.Error()))
	}

	slog.Info("Server shutdown complete", slog.String("type", "sys"))
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp, sessions *webservices.SessionService) {
	app.Get("/health", handlers.HealthCheck(webApp))

	auth := app.Group("/auth")
	auth.Use(middleware.AuthRateLimit())
	// Attribute auth traffic in request logs when a session is present,
	// without requiring one.
	auth.Use(middleware.OptionalAuth(sessions))
	auth.Post("/login", handlers.Login(webApp))
	auth.Post("/logout", handlers.Logout(webApp))

	app.Get("/api/auth/validate", handlers.ValidateSession(webApp))

	api := app.Group("/api")
	api.Use(middleware.APIRateLimit())
	api.Use(middleware.AuthRequired(sessions))

	cards := api.Group("/cards")
	cards.Get("/", handlers.CardsList(webApp))
	cards.Get("/search", handlers.CardsSearch(webApp))
	cards.Get("/:id", handlers.CardsDetail(webApp))
	cards.Post("/", handlers.CardsCreate(webApp))
	cards.Post("/:id/images", handlers.CardImageUpload(webApp))
	cards.Put("/:id", handlers.CardsUpdate(webApp))
	cards.Delete("/:id", handlers.CardsDelete(webApp))

	collections := api.Group("/collections")
	collections.Get("/", handlers.CollectionsList(webApp))
	collections.Get("/:id", handlers.CollectionsDetail(webApp))
	collections.Get("/:id/cards", handlers.CollectionCardsAPI(webApp))
	collections.Post("/", handlers.CollectionsCreate(webApp))
	collections.Put("/:id", handlers.CollectionsUpdate(webApp))
	collections.Post("/:id/default", handlers.CollectionsSetDefault(webApp))
	collections.Delete("/:id", handlers.CollectionsDelete(webApp))

	api.Get("/users/:id", handlers.UsersDetail(webApp))

	api.Get("/dashboard/stats", handlers.DashboardStatsAPI(webApp))
	api.Get("/sync/status", handlers.SyncStatus(webApp))

	mig := api.Group("/migration")
	mig.Post("/start", middleware.MigrationRateLimit(), middleware.AuditLogMiddleware("migration_start"), handlers.MigrationStart(webApp))
	mig.Get("/status", handlers.MigrationStatus(webApp))
	mig.Get("/verify", handlers.MigrationVerify(webApp))
	mig.Post("/clear", middleware.AuditLogMiddleware("migration_clear"), handlers.MigrationClear(webApp))
	mig.Post("/rollback", middleware.AuditLogMiddleware("migration_rollback"), handlers.MigrationRollback(webApp))

	app.Use(func(c *fiber.Ctx) error {
		slog.Warn("No route matched for request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return c.Status(404).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested endpoint does not exist",
		})
	})
}

package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	webservices "github.com/hobbyline/cardbinder/backend/services"
	"github.com/hobbyline/cardbinder/backend/utils"
	"github.com/hobbyline/cardbinder/internal/database"
	"github.com/hobbyline/cardbinder/internal/migration"
)

// WebApp represents the web application with all dependencies
type WebApp struct {
	DB                *database.DB
	Repos             *webmodels.Repositories
	CardMgmtService   *webservices.CardManagementService
	CollectionService *webservices.CollectionService
	SyncMgrService    *webservices.SyncManagerService
	SearchService     *webservices.SearchService
	SessionService    *webservices.SessionService
	ImageService      *webservices.ImageService
	Migrator          *migration.Migrator
	Version           string
	Commit            string
}

// GetSession delegates to the session service
func (w *WebApp) GetSession(c *fiber.Ctx) (*webmodels.UserSession, error) {
	return w.SessionService.GetSession(c)
}

// HealthCheck reports service and database health
func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := webmodels.NewHealthCheck(webApp.Version, webApp.Commit)

		ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		if err := webApp.DB.Pool().Ping(ctx); err != nil {
			health.AddComponent("database", "unhealthy", err.Error(), nil)
		} else {
			health.AddComponent("database", "healthy", "", nil)
		}

		status := fiber.StatusOK
		if health.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(health)
	}
}

// getDashboardStats retrieves dashboard statistics
func getDashboardStats(ctx context.Context, webApp *WebApp) (*webmodels.DashboardStats, error) {
	totalCards, err := webApp.Repos.Card.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get card count: %w", err)
	}

	totalCollections, err := webApp.Repos.Collection.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get collection count: %w", err)
	}

	totalUsers, err := webApp.Repos.User.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get user count: %w", err)
	}

	stats := &webmodels.DashboardStats{
		TotalCards:       totalCards,
		TotalCollections: totalCollections,
		TotalUsers:       totalUsers,
		SyncPercentage:   100,
		RecentActivity:   []webmodels.ActivityItem{},
	}

	if webApp.SyncMgrService != nil {
		if syncStatus, err := webApp.SyncMgrService.CheckSyncStatus(ctx); err == nil {
			stats.SyncPercentage = syncStatus.SyncPercentage
			stats.IssueCount = len(syncStatus.Issues)
		}
	}

	if result := webApp.Migrator.LastResult(); result != nil {
		stats.RecentActivity = append(stats.RecentActivity, webmodels.ActivityItem{
			Type:        "migration_run",
			Description: fmt.Sprintf("Migration run moved %d cards", result.CardsMigrated),
			Timestamp:   result.FinishedAt,
		})
	}

	return stats, nil
}

// DashboardStatsAPI serves aggregate counts for the dashboard
func DashboardStatsAPI(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := getDashboardStats(c.Context(), webApp)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to load dashboard stats")
		}
		return utils.SendSuccess(c, stats, "")
	}
}

// SyncStatus serves the local-vs-remote comparison
func SyncStatus(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, err := webApp.SyncMgrService.CheckSyncStatus(c.Context())
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to check sync status")
		}
		return utils.SendSuccess(c, status, "")
	}
}

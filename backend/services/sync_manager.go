package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	webmodels "github.com/hobbyline/cardbinder/backend/models"
	"github.com/hobbyline/cardbinder/internal/database/models"
	"github.com/hobbyline/cardbinder/internal/localstore"
)

// SyncManagerService compares the embedded local store against the remote
// database and reports discrepancies. It never writes to either store; the
// migration driver owns repairs.
type SyncManagerService struct {
	repos *webmodels.Repositories
	local *localstore.Store
}

// NewSyncManagerService creates a new sync manager service
func NewSyncManagerService(repos *webmodels.Repositories, local *localstore.Store) *SyncManagerService {
	return &SyncManagerService{
		repos: repos,
		local: local,
	}
}

// CheckSyncStatus builds a full local-vs-remote comparison for the user in
// the local profile.
func (sms *SyncManagerService) CheckSyncStatus(ctx context.Context) (*webmodels.SyncStatus, error) {
	start := time.Now()

	profile, err := sms.local.GetProfile()
	if err != nil {
		return nil, fmt.Errorf("failed to read local profile: %w", err)
	}

	status := &webmodels.SyncStatus{CheckedAt: start}

	status.LocalCards, err = sms.local.CountCards()
	if err != nil {
		return nil, fmt.Errorf("failed to count local cards: %w", err)
	}
	status.LocalCollections, err = sms.local.CountCollections()
	if err != nil {
		return nil, fmt.Errorf("failed to count local collections: %w", err)
	}

	status.RemoteCards, err = sms.repos.Card.CountByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count remote cards: %w", err)
	}
	remoteCollections, err := sms.repos.Collection.GetByUserID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote collections: %w", err)
	}
	status.RemoteCollections = len(remoteCollections)

	sms.findMissingCards(ctx, status)
	sms.findMissingCollections(remoteCollections, status)

	status.SyncPercentage = syncPercentage(status)
	if status.SyncPercentage < 100 {
		slog.Warn("Stores are out of sync",
			slog.Float64("percentage", status.SyncPercentage),
			slog.Int("issues", len(status.Issues)),
			slog.Duration("took", time.Since(start)))
	}

	return status, nil
}

// findMissingCards flags local cards that have no remote counterpart.
func (sms *SyncManagerService) findMissingCards(ctx context.Context, status *webmodels.SyncStatus) {
	localCards, err := sms.local.ListCards()
	if err != nil {
		status.Issues = append(status.Issues, webmodels.SyncIssue{
			Kind:        "local_read_error",
			Description: err.Error(),
		})
		return
	}

	for _, lc := range localCards {
		if _, err := sms.repos.Card.GetByID(ctx, lc.ID); err != nil {
			status.Issues = append(status.Issues, webmodels.SyncIssue{
				Kind:        "card_missing_remote",
				RecordID:    lc.ID,
				Description: fmt.Sprintf("local card %s not found in remote store", lc.ID),
			})
		}
	}
}

// findMissingCollections flags local collections absent from the remote set.
func (sms *SyncManagerService) findMissingCollections(remote []*models.Collection, status *webmodels.SyncStatus) {
	remoteIDs := make(map[string]bool, len(remote))
	for _, c := range remote {
		remoteIDs[c.ID] = true
	}

	localCollections, err := sms.local.ListCollections()
	if err != nil {
		status.Issues = append(status.Issues, webmodels.SyncIssue{
			Kind:        "local_read_error",
			Description: err.Error(),
		})
		return
	}

	for _, lc := range localCollections {
		if !remoteIDs[lc.ID] {
			status.Issues = append(status.Issues, webmodels.SyncIssue{
				Kind:        "collection_missing_remote",
				RecordID:    lc.ID,
				Description: fmt.Sprintf("local collection %s not found in remote store", lc.ID),
			})
		}
	}
}

func syncPercentage(status *webmodels.SyncStatus) float64 {
	if status.LocalCards == 0 {
		return 100
	}
	missing := 0
	for _, issue := range status.Issues {
		if issue.Kind == "card_missing_remote" {
			missing++
		}
	}
	synced := status.LocalCards - missing
	if synced < 0 {
		synced = 0
	}
	return float64(synced) / float64(status.LocalCards) * 100
}

package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chocoalano/esas-api/internal/domain/presence"
	"github.com/chocoalano/esas-api/internal/pkg/clock"
)

type PresenceJobs struct {
	tokenRepo presence.TokenRepository
	clock     clock.Clock
	retention time.Duration
}

// NewPresenceJobs purges tokens that expired more than retention ago.
func NewPresenceJobs(tokenRepo presence.TokenRepository, clk clock.Clock, retention time.Duration) *PresenceJobs {
	return &PresenceJobs{
		tokenRepo: tokenRepo,
		clock:     clk,
		retention: retention,
	}
}

func (j *PresenceJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("purge_expired_presence_tokens", interval, j.PurgeExpiredTokens)
}

// PurgeExpiredTokens deletes unredeemed tokens. Redeemed ones are kept for the
// transaction history.
func (j *PresenceJobs) PurgeExpiredTokens(ctx context.Context) error {
	cutoff := j.clock.Now().Add(-j.retention)

	deleted, err := j.tokenRepo.DeleteExpiredUnused(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge presence tokens: %w", err)
	}

	if deleted > 0 {
		slog.Info("Cron: purged expired presence tokens", "count", deleted, "cutoff", cutoff)
	}
	return nil
}

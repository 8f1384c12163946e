package scheduler

import (
	"fmt"
	"time"

	"dream_build_backend/internal/repositories"
	"dream_build_backend/pkg/utils"

	"github.com/robfig/cron/v3"
)

// ExpiredTokenPurger removes blacklist rows that outlived their token.
type ExpiredTokenPurger interface {
	DeleteExpired(now time.Time) (int64, error)
}

var _ ExpiredTokenPurger = repositories.TokenRepository(nil)

// PurgeExpiredTokens runs one cleanup pass.
func PurgeExpiredTokens(purger ExpiredTokenPurger, now time.Time) (int64, error) {
	deleted, err := purger.DeleteExpired(now)
	if err != nil {
		return 0, fmt.Errorf("purging expired tokens: %w", err)
	}
	if deleted > 0 {
		utils.LogInfo("Expired revoked tokens purged", map[string]interface{}{"deleted": deleted})
	}
	return deleted, nil
}

// StartTokenCleanup schedules PurgeExpiredTokens. The caller stops the returned cron on shutdown.
func StartTokenCleanup(schedule string, purger ExpiredTokenPurger) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		if _, err := PurgeExpiredTokens(purger, time.Now()); err != nil {
			utils.LogError(err, "Token cleanup failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token cleanup schedule %q: %w", schedule, err)
	}
	c.Start()
	utils.LogInfo("Token cleanup scheduled", map[string]interface{}{"schedule": schedule})
	return c, nil
}

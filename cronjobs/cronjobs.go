package cronjobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const refreshTimeout = 2 * time.Minute

// Refresher reloads the location snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (int, error)
}

// InitCronJobs schedules the snapshot refresh and starts the scheduler. The
// caller stops it with Stop.
func InitCronJobs(refresher Refresher, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	logger.Info("Starting cron jobs", zap.String("schedule", schedule))
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		n, err := refresher.Refresh(ctx)
		if err != nil {
			logger.Error("CronJob: snapshot refresh failed", zap.Error(err))
			return
		}
		logger.Info("CronJob: snapshot refreshed", zap.Int("locations", n))
	})
	if err != nil {
		return nil, fmt.Errorf("error scheduling snapshot refresh: %w", err)
	}

	c.Start()
	return c, nil
}

package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/insightlens/insightlens/internal/service"
)

// CleanupJob fails comparison jobs abandoned by a crash and purges
// terminal jobs past the retention window.
type CleanupJob struct {
	compare   *service.CompareService
	staleAge  time.Duration
	retention time.Duration
}

func NewCleanupJob(compare *service.CompareService, staleAge, retention time.Duration) *CleanupJob {
	if staleAge <= 0 {
		staleAge = time.Hour
	}
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	return &CleanupJob{compare: compare, staleAge: staleAge, retention: retention}
}

func (j *CleanupJob) Name() string {
	return "compare_job_cleanup"
}

func (j *CleanupJob) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	now := time.Now()

	failed, err := j.compare.MarkStaleJobs(ctx, now.Add(-j.staleAge))
	if err != nil {
		return err
	}
	if failed > 0 {
		logger.Warn("stale compare jobs failed", zap.Int64("count", failed))
	}

	purged, err := j.compare.PurgeFinishedJobs(ctx, now.Add(-j.retention))
	if err != nil {
		return err
	}
	if purged > 0 {
		logger.Info("finished compare jobs purged", zap.Int64("count", purged))
	}
	return nil
}

package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SlotSweepJobName is the name of the expired upload slot sweep
const SlotSweepJobName = "upload_slot_sweep"

// SlotSweeper removes upload slots that expired without being referenced.
// Declared here so the job does not import the service package.
type SlotSweeper interface {
	SweepExpired(ctx context.Context, batchSize int) (int, error)
}

// SlotSweepJob deletes abandoned uploads in batches until none are left
type SlotSweepJob struct {
	sweeper   SlotSweeper
	batchSize int
	logger    *zap.Logger
}

func NewSlotSweepJob(sweeper SlotSweeper, batchSize int, logger *zap.Logger) *SlotSweepJob {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &SlotSweepJob{sweeper: sweeper, batchSize: batchSize, logger: logger}
}

// Run sweeps until a batch comes back short or ctx expires
func (j *SlotSweepJob) Run(ctx context.Context) {
	start := time.Now()
	total := 0
	for ctx.Err() == nil {
		removed, err := j.sweeper.SweepExpired(ctx, j.batchSize)
		total += removed
		if err != nil {
			j.logger.Error("upload slot sweep failed",
				zap.Error(err),
				zap.Int("removed", total),
				zap.Duration("duration", time.Since(start)))
			return
		}
		if removed < j.batchSize {
			break
		}
	}

	if total > 0 {
		j.logger.Info("upload slot sweep completed",
			zap.Int("removed", total),
			zap.Duration("duration", time.Since(start)))
	}
}

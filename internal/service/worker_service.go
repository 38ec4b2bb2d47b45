package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// WorkerService delivers sync tasks that stayed pending, which happens when the process
// stops between a doctor commit and its post-commit sync.
type WorkerService struct {
	tasks      SyncTaskStore
	userSync   *UserSyncService
	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	logger     *zap.Logger
	now        func() time.Time
}

func NewWorkerService(
	tasks SyncTaskStore,
	userSync *UserSyncService,
	interval, staleAfter time.Duration,
	batchSize int,
	logger *zap.Logger,
) *WorkerService {
	return &WorkerService{
		tasks:      tasks,
		userSync:   userSync,
		interval:   interval,
		staleAfter: staleAfter,
		batchSize:  batchSize,
		logger:     logger,
		now:        time.Now,
	}
}

// Start polls until ctx is cancelled
func (w *WorkerService) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("outbox worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("stale_after", w.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopped")
			return
		case <-ticker.C:
			w.processPending(ctx)
		}
	}
}

// processPending delivers one batch of stale pending tasks and returns how many ran
func (w *WorkerService) processPending(ctx context.Context) int {
	cutoff := w.now().Add(-w.staleAfter)
	tasks, err := w.tasks.ListStalePending(ctx, cutoff, w.batchSize)
	if err != nil {
		w.logger.Error("failed to fetch pending sync tasks", zap.Error(err))
		return 0
	}

	processed := 0
	for i := range tasks {
		if ctx.Err() != nil {
			break
		}
		if err := w.userSync.Run(ctx, &tasks[i]); err == nil {
			w.logger.Info("delivered pending sync task",
				zap.Uint("task_id", tasks[i].ID),
				zap.String("action", tasks[i].Action),
			)
		}
		processed++
	}
	return processed
}

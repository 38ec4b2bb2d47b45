package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"

	"go.uber.org/zap"
)

// UserSyncService delivers outbox tasks to the user collaborator and records their outcome.
// Failed tasks stay failed until an operator retries them.
type UserSyncService struct {
	users     UserAccounts
	tasks     SyncTaskStore
	auditRepo AuditStore
	logger    *zap.Logger
	now       func() time.Time
}

func NewUserSyncService(users UserAccounts, tasks SyncTaskStore, auditRepo AuditStore, logger *zap.Logger) *UserSyncService {
	return &UserSyncService{
		users:     users,
		tasks:     tasks,
		auditRepo: auditRepo,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one task and persists its outcome. The returned error is the delivery failure.
func (s *UserSyncService) Run(ctx context.Context, task *models.UserSyncTask) error {
	runErr := s.deliver(ctx, task)

	now := s.now()
	task.Attempts++
	task.ProcessedAt = &now
	if runErr != nil {
		task.Status = models.SyncStatusFailed
		task.LastError = runErr.Error()
	} else {
		task.Status = models.SyncStatusSucceeded
		task.LastError = ""
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Error("failed to record user sync outcome",
			zap.Uint("task_id", task.ID),
			zap.String("status", task.Status),
			zap.Error(err),
		)
	}

	if runErr != nil {
		s.logger.Warn("user sync failed",
			zap.Uint("task_id", task.ID),
			zap.Uint("doctor_id", task.DoctorID),
			zap.Uint("user_id", task.UserID),
			zap.String("action", task.Action),
			zap.Int("attempts", task.Attempts),
			zap.Error(runErr),
		)
		return runErr
	}
	return nil
}

func (s *UserSyncService) deliver(ctx context.Context, task *models.UserSyncTask) error {
	switch task.Action {
	case models.SyncActionUpdate:
		profile, err := task.Profile()
		if err != nil {
			return fmt.Errorf("failed to decode sync payload: %w", err)
		}
		if err := s.users.UpdateProfile(ctx, task.UserID, profile); err != nil {
			return fmt.Errorf("failed to update user %d: %w", task.UserID, err)
		}
		return nil
	case models.SyncActionDelete:
		err := s.users.Delete(ctx, task.UserID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to delete user %d: %w", task.UserID, err)
		}
		return nil
	default:
		return fmt.Errorf("unknown sync action %q", task.Action)
	}
}

// Retry re-runs a task that has not succeeded. The outcome is on the returned task.
func (s *UserSyncService) Retry(ctx context.Context, taskID uint, actorID uint) (*models.UserSyncTask, error) {
	task, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return nil, lookupErr(err, "sync task", taskID)
	}
	if task.Status == models.SyncStatusSucceeded {
		return nil, conflict("sync task %d already succeeded", taskID)
	}

	_ = s.Run(ctx, task)
	_ = s.auditRepo.Record(ctx, models.NewAuditLog(actorID, models.AuditSyncRetry, "user_sync_task", task.ID,
		"Retried sync task %d: %s", task.ID, task.Status))
	return task, nil
}

// ListByStatus lists tasks for reconciliation
func (s *UserSyncService) ListByStatus(ctx context.Context, status string) ([]models.UserSyncTask, error) {
	switch status {
	case models.SyncStatusPending, models.SyncStatusSucceeded, models.SyncStatusFailed:
	default:
		return nil, invalidArgument("unknown sync task status %q", status)
	}

	tasks, err := s.tasks.ListByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.UserSyncTask{}
	}
	return tasks, nil
}

package repository

import (
	"context"
	"time"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

type SyncTaskRepository struct {
	db *gorm.DB
}

func NewSyncTaskRepo(db *gorm.DB) *SyncTaskRepository {
	return &SyncTaskRepository{db: db}
}

// Create stores a new outbox task
func (r *SyncTaskRepository) Create(ctx context.Context, task *models.UserSyncTask) error {
	return database.Conn(ctx, r.db).Create(task).Error
}

// FindByID retrieves an outbox task by ID
func (r *SyncTaskRepository) FindByID(ctx context.Context, id uint) (*models.UserSyncTask, error) {
	var task models.UserSyncTask
	if err := database.Conn(ctx, r.db).First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

// Update saves the status, attempts and error of a task
func (r *SyncTaskRepository) Update(ctx context.Context, task *models.UserSyncTask) error {
	return database.Conn(ctx, r.db).Save(task).Error
}

// ListByStatus returns tasks in the given status, oldest first
func (r *SyncTaskRepository) ListByStatus(ctx context.Context, status string) ([]models.UserSyncTask, error) {
	var tasks []models.UserSyncTask
	err := database.Conn(ctx, r.db).
		Where("status = ?", status).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListStalePending returns pending tasks created before the cutoff
func (r *SyncTaskRepository) ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.UserSyncTask, error) {
	var tasks []models.UserSyncTask
	err := database.Conn(ctx, r.db).
		Where("status = ? AND created_at < ?", models.SyncStatusPending, before).
		Order("id ASC").
		Limit(limit).
		Find(&tasks).Error
	return tasks, err
}

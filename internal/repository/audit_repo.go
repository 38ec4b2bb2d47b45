package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepo(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends an entry to the audit trail, inside the caller's transaction when there is one
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	return database.Conn(ctx, r.db).Create(entry).Error
}

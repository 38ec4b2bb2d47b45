package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepo(db *gorm.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// FindByID retrieves a department by ID
func (r *DepartmentRepository) FindByID(ctx context.Context, id uint) (*models.Department, error) {
	var department models.Department
	if err := database.Conn(ctx, r.db).First(&department, id).Error; err != nil {
		return nil, translate(err)
	}
	return &department, nil
}

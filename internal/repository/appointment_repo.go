package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepo(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

// FindByID retrieves an appointment by ID
func (r *AppointmentRepository) FindByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := database.Conn(ctx, r.db).First(&appointment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &appointment, nil
}

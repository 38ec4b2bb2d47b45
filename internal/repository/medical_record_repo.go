package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MedicalRecordRepository struct {
	db *gorm.DB
}

func NewMedicalRecordRepo(db *gorm.DB) *MedicalRecordRepository {
	return &MedicalRecordRepository{db: db}
}

func (r *MedicalRecordRepository) withRelations(ctx context.Context) *gorm.DB {
	return database.Conn(ctx, r.db).
		Preload("Appointment").
		Preload("Doctor").
		Preload("Patient")
}

// Create inserts a record without touching its associations
func (r *MedicalRecordRepository) Create(ctx context.Context, record *models.MedicalRecord) error {
	return translate(database.Conn(ctx, r.db).Omit(clause.Associations).Create(record).Error)
}

// FindByID retrieves a record with its appointment, doctor and patient
func (r *MedicalRecordRepository) FindByID(ctx context.Context, id uint) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	if err := r.withRelations(ctx).First(&record, id).Error; err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// FindByAppointmentID retrieves the record written for an appointment
func (r *MedicalRecordRepository) FindByAppointmentID(ctx context.Context, appointmentID uint) (*models.MedicalRecord, error) {
	var record models.MedicalRecord
	err := r.withRelations(ctx).Where("appointment_id = ?", appointmentID).First(&record).Error
	if err != nil {
		return nil, translate(err)
	}
	return &record, nil
}

// ExistsByAppointmentID reports whether a record already exists for the appointment
func (r *MedicalRecordRepository) ExistsByAppointmentID(ctx context.Context, appointmentID uint) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&models.MedicalRecord{}).
		Where("appointment_id = ?", appointmentID).
		Count(&count).Error
	return count > 0, err
}

// UpdateClinical persists the clinical fields and status only.
// The appointment, doctor and patient references are never rewritten.
func (r *MedicalRecordRepository) UpdateClinical(ctx context.Context, record *models.MedicalRecord) error {
	result := database.Conn(ctx, r.db).Model(&models.MedicalRecord{ID: record.ID}).
		Select("diagnosis", "treatment", "medication", "notes", "status", "updated_at").
		Updates(map[string]interface{}{
			"diagnosis":  record.Diagnosis,
			"treatment":  record.Treatment,
			"medication": record.Medication,
			"notes":      record.Notes,
			"status":     record.Status,
			"updated_at": record.UpdatedAt,
		})
	return translate(result.Error)
}

// Delete removes a record by ID
func (r *MedicalRecordRepository) Delete(ctx context.Context, id uint) error {
	result := database.Conn(ctx, r.db).Delete(&models.MedicalRecord{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MedicalRecordRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.MedicalRecord, error) {
	var records []models.MedicalRecord
	err := r.withRelations(ctx).Where(query, args...).Order("id ASC").Find(&records).Error
	return records, err
}

// ListByDoctorID returns every record written by a doctor
func (r *MedicalRecordRepository) ListByDoctorID(ctx context.Context, doctorID uint) ([]models.MedicalRecord, error) {
	return r.list(ctx, "doctor_id = ?", doctorID)
}

// ListByPatientID returns every record of a patient
func (r *MedicalRecordRepository) ListByPatientID(ctx context.Context, patientID uint) ([]models.MedicalRecord, error) {
	return r.list(ctx, "patient_id = ?", patientID)
}

// ListByDoctorAndPatient returns the records matching both the doctor and the patient
func (r *MedicalRecordRepository) ListByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) ([]models.MedicalRecord, error) {
	return r.list(ctx, "doctor_id = ? AND patient_id = ?", doctorID, patientID)
}

// ListByStatus returns the records with the given status
func (r *MedicalRecordRepository) ListByStatus(ctx context.Context, status int) ([]models.MedicalRecord, error) {
	return r.list(ctx, "status = ?", status)
}

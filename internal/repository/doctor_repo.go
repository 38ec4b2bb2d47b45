package repository

import (
	"context"

	"appointment-backend/internal/database"
	"appointment-backend/internal/models"

	"gorm.io/gorm"
)

const doctorDepartmentTable = "doctor_department"

// DoctorFilter narrows a doctor search. Zero-valued fields are not applied.
type DoctorFilter struct {
	Name          string
	DepartmentIDs []uint
	Status        *int
}

// doctorDepartment is one row of the doctor to department join table
type doctorDepartment struct {
	DoctorID     uint
	DepartmentID uint
}

func (doctorDepartment) TableName() string {
	return doctorDepartmentTable
}

type DoctorRepository struct {
	db *gorm.DB
}

func NewDoctorRepo(db *gorm.DB) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// Create inserts the doctor and its join rows; departments themselves are not upserted
func (r *DoctorRepository) Create(ctx context.Context, doctor *models.Doctor) error {
	return translate(database.Conn(ctx, r.db).Omit("Departments.*").Create(doctor).Error)
}

// FindByID retrieves a doctor with its departments
func (r *DoctorRepository) FindByID(ctx context.Context, id uint) (*models.Doctor, error) {
	var doctor models.Doctor
	if err := database.Conn(ctx, r.db).Preload("Departments").First(&doctor, id).Error; err != nil {
		return nil, translate(err)
	}
	return &doctor, nil
}

// FindByUserID retrieves the doctor linked to a user account
func (r *DoctorRepository) FindByUserID(ctx context.Context, userID uint) (*models.Doctor, error) {
	var doctor models.Doctor
	err := database.Conn(ctx, r.db).Preload("Departments").Where("user_id = ?", userID).First(&doctor).Error
	if err != nil {
		return nil, translate(err)
	}
	return &doctor, nil
}

// Update writes the mutable doctor columns and rewrites its department links.
// Only doctors and doctor_department are touched; updated_at keeps the caller's value.
func (r *DoctorRepository) Update(ctx context.Context, doctor *models.Doctor) error {
	conn := database.Conn(ctx, r.db)
	err := conn.Model(&models.Doctor{ID: doctor.ID}).
		Select("name", "title", "specialty", "introduction", "photo_url", "status", "updated_at").
		Updates(map[string]interface{}{
			"name":         doctor.Name,
			"title":        doctor.Title,
			"specialty":    doctor.Specialty,
			"introduction": doctor.Introduction,
			"photo_url":    doctor.PhotoURL,
			"status":       doctor.Status,
			"updated_at":   doctor.UpdatedAt,
		}).Error
	if err != nil {
		return translate(err)
	}

	if err := conn.Exec("DELETE FROM "+doctorDepartmentTable+" WHERE doctor_id = ?", doctor.ID).Error; err != nil {
		return err
	}
	if len(doctor.Departments) == 0 {
		return nil
	}
	links := make([]doctorDepartment, 0, len(doctor.Departments))
	for _, dept := range doctor.Departments {
		links = append(links, doctorDepartment{DoctorID: doctor.ID, DepartmentID: dept.ID})
	}
	return translate(conn.Create(&links).Error)
}

// Delete removes the doctor and its department links
func (r *DoctorRepository) Delete(ctx context.Context, id uint) error {
	conn := database.Conn(ctx, r.db)
	if err := conn.Exec("DELETE FROM "+doctorDepartmentTable+" WHERE doctor_id = ?", id).Error; err != nil {
		return err
	}
	result := conn.Delete(&models.Doctor{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByDepartment returns the doctors linked to a department
func (r *DoctorRepository) ListByDepartment(ctx context.Context, departmentID uint) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := r.inDepartments(database.Conn(ctx, r.db), []uint{departmentID}).
		Preload("Departments").
		Order("doctors.id ASC").
		Find(&doctors).Error
	return doctors, err
}

// Search returns one page of doctors matching the filter and the total match count
func (r *DoctorRepository) Search(ctx context.Context, filter DoctorFilter, offset, limit int) ([]models.Doctor, int64, error) {
	query := database.Conn(ctx, r.db).Model(&models.Doctor{})
	if filter.Name != "" {
		query = query.Where("doctors.name LIKE ?", "%"+filter.Name+"%")
	}
	if len(filter.DepartmentIDs) > 0 {
		query = r.inDepartments(query, filter.DepartmentIDs)
	}
	if filter.Status != nil {
		query = query.Where("doctors.status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var doctors []models.Doctor
	err := query.Preload("Departments").
		Order("doctors.id ASC").
		Offset(offset).
		Limit(limit).
		Find(&doctors).Error
	if err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

func (r *DoctorRepository) inDepartments(query *gorm.DB, departmentIDs []uint) *gorm.DB {
	sub := query.Session(&gorm.Session{NewDB: true}).
		Table(doctorDepartmentTable).
		Select("doctor_id").
		Where("department_id IN ?", departmentIDs)
	return query.Where("doctors.id IN (?)", sub)
}

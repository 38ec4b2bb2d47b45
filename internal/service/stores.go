package service

import (
	"context"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"
)

// Transactor runs fn inside one database transaction carried by ctx
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type RecordStore interface {
	Create(ctx context.Context, record *models.MedicalRecord) error
	FindByID(ctx context.Context, id uint) (*models.MedicalRecord, error)
	FindByAppointmentID(ctx context.Context, appointmentID uint) (*models.MedicalRecord, error)
	ExistsByAppointmentID(ctx context.Context, appointmentID uint) (bool, error)
	UpdateClinical(ctx context.Context, record *models.MedicalRecord) error
	Delete(ctx context.Context, id uint) error
	ListByDoctorID(ctx context.Context, doctorID uint) ([]models.MedicalRecord, error)
	ListByPatientID(ctx context.Context, patientID uint) ([]models.MedicalRecord, error)
	ListByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) ([]models.MedicalRecord, error)
	ListByStatus(ctx context.Context, status int) ([]models.MedicalRecord, error)
}

type DoctorStore interface {
	Create(ctx context.Context, doctor *models.Doctor) error
	FindByID(ctx context.Context, id uint) (*models.Doctor, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Doctor, error)
	Update(ctx context.Context, doctor *models.Doctor) error
	Delete(ctx context.Context, id uint) error
	ListByDepartment(ctx context.Context, departmentID uint) ([]models.Doctor, error)
	Search(ctx context.Context, filter repository.DoctorFilter, offset, limit int) ([]models.Doctor, int64, error)
}

type DepartmentStore interface {
	FindByID(ctx context.Context, id uint) (*models.Department, error)
}

type AppointmentStore interface {
	FindByID(ctx context.Context, id uint) (*models.Appointment, error)
}

// UserFinder resolves patients and doctor login accounts
type UserFinder interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
}

//go:generate mockgen -destination=mocks/user_accounts_mock.go -package=mocks appointment-backend/internal/service UserAccounts

// UserAccounts is the user collaborator a doctor profile is kept in sync with
type UserAccounts interface {
	UserFinder
	UpdateProfile(ctx context.Context, id uint, profile models.UserProfile) error
	Delete(ctx context.Context, id uint) error
}

type SyncTaskStore interface {
	Create(ctx context.Context, task *models.UserSyncTask) error
	FindByID(ctx context.Context, id uint) (*models.UserSyncTask, error)
	Update(ctx context.Context, task *models.UserSyncTask) error
	ListByStatus(ctx context.Context, status string) ([]models.UserSyncTask, error)
	ListStalePending(ctx context.Context, before time.Time, limit int) ([]models.UserSyncTask, error)
}

type AuditStore interface {
	Record(ctx context.Context, entry *models.AuditLog) error
}

// CredentialStore holds login accounts and their refresh tokens
type CredentialStore interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error
	FindRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"
	"appointment-backend/pkg/pagination"

	"go.uber.org/zap"
)

// DoctorInput carries the writable doctor fields.
// Username, email and phone are not stored on the doctor; they are pushed to the linked user.
type DoctorInput struct {
	UserID        uint   `json:"user_id"`
	Name          string `json:"name" binding:"required,max=100"`
	Title         string `json:"title" binding:"required,max=50"`
	Specialty     string `json:"specialty" binding:"max=200"`
	Introduction  string `json:"introduction" binding:"max=500"`
	PhotoURL      string `json:"photo_url" binding:"max=255"`
	DepartmentIDs []uint `json:"department_ids"`
	DepartmentID  uint   `json:"department_id"`
	Status        *int   `json:"status"`
	Username      string `json:"username" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=100"`
	Phone         string `json:"phone" binding:"max=20"`
}

// departmentIDs falls back to the single legacy department_id when no list is given
func (in DoctorInput) departmentIDs() []uint {
	if len(in.DepartmentIDs) > 0 {
		return in.DepartmentIDs
	}
	if in.DepartmentID != 0 {
		return []uint{in.DepartmentID}
	}
	return nil
}

func (in DoctorInput) profile() models.UserProfile {
	return models.UserProfile{
		Name:     in.Name,
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
	}
}

// SyncWarning reports a user account synchronization that did not go through
type SyncWarning struct {
	TaskID uint   `json:"task_id"`
	UserID uint   `json:"user_id"`
	Action string `json:"action"`
	Error  string `json:"error"`
}

// DoctorResponse is a doctor enriched with its departments and the linked user's contact fields.
// DepartmentID and DepartmentName expose the primary department, the one with the smallest id.
type DoctorResponse struct {
	ID              uint          `json:"id"`
	UserID          uint          `json:"user_id"`
	Name            string        `json:"name"`
	Title           string        `json:"title"`
	Specialty       string        `json:"specialty"`
	Introduction    string        `json:"introduction"`
	PhotoURL        string        `json:"photo_url"`
	Status          int           `json:"status"`
	DepartmentIDs   []uint        `json:"department_ids"`
	DepartmentNames []string      `json:"department_names"`
	DepartmentID    uint          `json:"department_id,omitempty"`
	DepartmentName  string        `json:"department_name,omitempty"`
	Username        string        `json:"username,omitempty"`
	Email           string        `json:"email,omitempty"`
	Phone           string        `json:"phone,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	SyncWarnings    []SyncWarning `json:"sync_warnings,omitempty"`
}

// DoctorSearch holds the optional search filters
type DoctorSearch struct {
	Name          string
	DepartmentID  *uint
	DepartmentIDs []uint
	Status        *int
}

type DoctorService struct {
	tx          Transactor
	doctors     DoctorStore
	departments DepartmentStore
	users       UserFinder
	syncTasks   SyncTaskStore
	userSync    *UserSyncService
	auditRepo   AuditStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewDoctorService(
	tx Transactor,
	doctors DoctorStore,
	departments DepartmentStore,
	users UserFinder,
	syncTasks SyncTaskStore,
	userSync *UserSyncService,
	auditRepo AuditStore,
	logger *zap.Logger,
) *DoctorService {
	return &DoctorService{
		tx:          tx,
		doctors:     doctors,
		departments: departments,
		users:       users,
		syncTasks:   syncTasks,
		userSync:    userSync,
		auditRepo:   auditRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// Create stores a doctor linked to an existing user and 1-3 existing departments
func (s *DoctorService) Create(ctx context.Context, in DoctorInput, actorID uint) (*DoctorResponse, error) {
	doctor := &models.Doctor{
		UserID:       in.UserID,
		Name:         in.Name,
		Title:        in.Title,
		Specialty:    in.Specialty,
		Introduction: in.Introduction,
		PhotoURL:     in.PhotoURL,
		Status:       1,
	}
	if in.Status != nil {
		doctor.Status = *in.Status
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Departments resolve before the user reference is checked
		departments, err := s.resolveDepartments(ctx, in.departmentIDs())
		if err != nil {
			return err
		}
		if in.UserID == 0 {
			return invalidArgument("user_id is required")
		}
		if _, err := s.users.FindByID(ctx, in.UserID); err != nil {
			return lookupErr(err, "user", in.UserID)
		}
		if err := doctor.SetDepartments(departments); err != nil {
			return invalidArgument("%s", err.Error())
		}

		now := s.now()
		doctor.CreatedAt = now
		doctor.UpdatedAt = now
		if err := s.doctors.Create(ctx, doctor); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("doctor already exists for user %d", in.UserID)
			}
			return fmt.Errorf("failed to create doctor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.auditRepo.Record(ctx, models.NewAuditLog(actorID, models.AuditDoctorCreate, "doctor", doctor.ID, "Created doctor %d for user %d", doctor.ID, doctor.UserID))

	resp := s.toResponse(ctx, doctor)
	return &resp, nil
}

// Update overwrites the mutable doctor fields and departments, then syncs the linked user.
// The doctor write and its outbox task commit together; a failed sync is reported as a warning.
func (s *DoctorService) Update(ctx context.Context, id uint, in DoctorInput) (*DoctorResponse, error) {
	var (
		doctor *models.Doctor
		task   *models.UserSyncTask
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		doctor, err = s.doctors.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "doctor", id)
		}

		departments, err := s.resolveDepartments(ctx, in.departmentIDs())
		if err != nil {
			return err
		}
		if err := doctor.SetDepartments(departments); err != nil {
			return invalidArgument("%s", err.Error())
		}

		doctor.Name = in.Name
		doctor.Title = in.Title
		doctor.Specialty = in.Specialty
		doctor.Introduction = in.Introduction
		doctor.PhotoURL = in.PhotoURL
		if in.Status != nil {
			doctor.Status = *in.Status
		}
		doctor.UpdatedAt = s.now()

		if err := s.doctors.Update(ctx, doctor); err != nil {
			return fmt.Errorf("failed to update doctor: %w", err)
		}

		task, err = models.NewProfileSyncTask(doctor.ID, doctor.UserID, in.profile())
		if err != nil {
			return fmt.Errorf("failed to build user sync task: %w", err)
		}
		if err := s.syncTasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to store user sync task: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	syncErr := s.userSync.Run(ctx, task)

	resp := s.toResponse(ctx, doctor)
	if syncErr != nil {
		resp.SyncWarnings = append(resp.SyncWarnings, SyncWarning{
			TaskID: task.ID,
			UserID: task.UserID,
			Action: task.Action,
			Error:  syncErr.Error(),
		})
	}
	return &resp, nil
}

// Delete removes the doctor, then deletes the linked user account.
// A failed account deletion is recorded on the outbox task and logged, never returned.
func (s *DoctorService) Delete(ctx context.Context, id uint, actorID uint) error {
	var task *models.UserSyncTask
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		doctor, err := s.doctors.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "doctor", id)
		}
		if err := s.doctors.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete doctor: %w", err)
		}

		task = models.NewDeleteSyncTask(doctor.ID, doctor.UserID)
		if err := s.syncTasks.Create(ctx, task); err != nil {
			return fmt.Errorf("failed to store user sync task: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.auditRepo.Record(ctx, models.NewAuditLog(actorID, models.AuditDoctorDelete, "doctor", id, "Deleted doctor %d", id))
	_ = s.userSync.Run(ctx, task)
	return nil
}

func (s *DoctorService) GetByID(ctx context.Context, id uint) (*DoctorResponse, error) {
	doctor, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "doctor", id)
	}
	resp := s.toResponse(ctx, doctor)
	return &resp, nil
}

// GetByUserID returns the doctor profile of a user account
func (s *DoctorService) GetByUserID(ctx context.Context, userID uint) (*DoctorResponse, error) {
	doctor, err := s.doctors.FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("doctor for user %d not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	resp := s.toResponse(ctx, doctor)
	return &resp, nil
}

// GetByDepartment lists every doctor linked to the department
func (s *DoctorService) GetByDepartment(ctx context.Context, departmentID uint) ([]DoctorResponse, error) {
	doctors, err := s.doctors.ListByDepartment(ctx, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return s.toResponses(ctx, doctors), nil
}

// Search returns a page of doctors. A non-empty department id list takes precedence over
// the single department filter.
func (s *DoctorService) Search(ctx context.Context, criteria DoctorSearch, page pagination.Page) (pagination.Result[DoctorResponse], error) {
	filter := resolveSearchFilter(criteria)

	doctors, total, err := s.doctors.Search(ctx, filter, page.Offset(), page.Size)
	if err != nil {
		return pagination.Result[DoctorResponse]{}, fmt.Errorf("failed to search doctors: %w", err)
	}
	return pagination.NewResult(s.toResponses(ctx, doctors), total, page), nil
}

// resolveSearchFilter picks one filter combination in a fixed precedence.
// With department ids: name+ids+status, name+ids, ids+status, ids.
// Otherwise: name+department+status, name+status, department+status, unfiltered.
func resolveSearchFilter(c DoctorSearch) repository.DoctorFilter {
	hasName := c.Name != ""
	hasStatus := c.Status != nil

	if ids := dedupeIDs(c.DepartmentIDs); len(ids) > 0 {
		filter := repository.DoctorFilter{DepartmentIDs: ids}
		if hasName {
			filter.Name = c.Name
		}
		if hasStatus {
			filter.Status = c.Status
		}
		return filter
	}

	hasDept := c.DepartmentID != nil
	switch {
	case hasName && hasDept && hasStatus:
		return repository.DoctorFilter{Name: c.Name, DepartmentIDs: []uint{*c.DepartmentID}, Status: c.Status}
	case hasName && hasStatus:
		return repository.DoctorFilter{Name: c.Name, Status: c.Status}
	case hasDept && hasStatus:
		return repository.DoctorFilter{DepartmentIDs: []uint{*c.DepartmentID}, Status: c.Status}
	default:
		return repository.DoctorFilter{}
	}
}

// resolveDepartments loads every distinct department id; at least one is required
func (s *DoctorService) resolveDepartments(ctx context.Context, ids []uint) ([]models.Department, error) {
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return nil, invalidArgument("at least one department is required")
	}
	if len(ids) > models.MaxDoctorDepartments {
		return nil, invalidArgument("%s", models.ErrTooManyDepartments.Error())
	}

	departments := make([]models.Department, 0, len(ids))
	for _, id := range ids {
		dept, err := s.departments.FindByID(ctx, id)
		if err != nil {
			return nil, lookupErr(err, "department", id)
		}
		departments = append(departments, *dept)
	}
	return departments, nil
}

func (s *DoctorService) toResponses(ctx context.Context, doctors []models.Doctor) []DoctorResponse {
	out := make([]DoctorResponse, 0, len(doctors))
	for i := range doctors {
		out = append(out, s.toResponse(ctx, &doctors[i]))
	}
	return out
}

func (s *DoctorService) toResponse(ctx context.Context, doctor *models.Doctor) DoctorResponse {
	resp := DoctorResponse{
		ID:              doctor.ID,
		UserID:          doctor.UserID,
		Name:            doctor.Name,
		Title:           doctor.Title,
		Specialty:       doctor.Specialty,
		Introduction:    doctor.Introduction,
		PhotoURL:        doctor.PhotoURL,
		Status:          doctor.Status,
		DepartmentIDs:   []uint{},
		DepartmentNames: []string{},
		CreatedAt:       doctor.CreatedAt,
		UpdatedAt:       doctor.UpdatedAt,
	}

	for _, dept := range doctor.SortedDepartments() {
		resp.DepartmentIDs = append(resp.DepartmentIDs, dept.ID)
		resp.DepartmentNames = append(resp.DepartmentNames, dept.Name)
	}
	if primary, ok := doctor.PrimaryDepartment(); ok {
		resp.DepartmentID = primary.ID
		resp.DepartmentName = primary.Name
	}

	user, err := s.users.FindByID(ctx, doctor.UserID)
	if err != nil {
		s.logger.Warn("failed to load linked user for doctor",
			zap.Uint("doctor_id", doctor.ID),
			zap.Uint("user_id", doctor.UserID),
			zap.Error(err),
		)
		return resp
	}
	resp.Username = user.Username
	resp.Email = user.Email
	resp.Phone = user.Phone
	return resp
}

func dedupeIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"appointment-backend/internal/middleware"
	"appointment-backend/internal/models"
	"appointment-backend/internal/service"
	"appointment-backend/pkg/pagination"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type DoctorManager interface {
	Create(ctx context.Context, in service.DoctorInput, actorID uint) (*service.DoctorResponse, error)
	Update(ctx context.Context, id uint, in service.DoctorInput) (*service.DoctorResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	GetByID(ctx context.Context, id uint) (*service.DoctorResponse, error)
	GetByUserID(ctx context.Context, userID uint) (*service.DoctorResponse, error)
	GetByDepartment(ctx context.Context, departmentID uint) ([]service.DoctorResponse, error)
	Search(ctx context.Context, criteria service.DoctorSearch, page pagination.Page) (pagination.Result[service.DoctorResponse], error)
}

type DoctorHandler struct {
	doctors DoctorManager
	logger  *zap.Logger
}

func NewDoctorHandler(doctors DoctorManager, logger *zap.Logger) *DoctorHandler {
	return &DoctorHandler{doctors: doctors, logger: logger}
}

// Create registers a doctor profile (admin only)
func (h *DoctorHandler) Create(c *gin.Context) {
	var in service.DoctorInput
	if !bindJSON(c, &in) {
		return
	}

	doctor, err := h.doctors.Create(c.Request.Context(), in, middleware.CurrentUserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.CreatedResponse(c, doctor)
}

// Update replaces the doctor fields; user sync problems come back as sync_warnings.
// Doctors may only edit the profile linked to their own account.
func (h *DoctorHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if middleware.CurrentRole(c) == models.RoleDoctor {
		current, err := h.doctors.GetByID(c.Request.Context(), id)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if current.UserID != middleware.CurrentUserID(c) {
			utils.ErrorResponse(c, http.StatusForbidden, "Doctors may only edit their own profile")
			return
		}
	}
	var in service.DoctorInput
	if !bindJSON(c, &in) {
		return
	}

	doctor, err := h.doctors.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

func (h *DoctorHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.doctors.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.MessageResponse(c, "Doctor deleted successfully")
}

func (h *DoctorHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	doctor, err := h.doctors.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

func (h *DoctorHandler) GetByUser(c *gin.Context) {
	userID, ok := uintParam(c, "userId")
	if !ok {
		return
	}
	doctor, err := h.doctors.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, doctor)
}

func (h *DoctorHandler) ListByDepartment(c *gin.Context) {
	departmentID, ok := uintParam(c, "departmentId")
	if !ok {
		return
	}
	doctors, err := h.doctors.GetByDepartment(c.Request.Context(), departmentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.ListResponse(c, "doctors", doctors)
}

// Search handles GET /api/doctors with name, department_id, department_ids, status, page and size
func (h *DoctorHandler) Search(c *gin.Context) {
	criteria, err := parseDoctorSearch(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.doctors.Search(c.Request.Context(), criteria, pagination.FromQuery(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// parseDoctorSearch accepts department_ids both comma separated and repeated
func parseDoctorSearch(c *gin.Context) (service.DoctorSearch, error) {
	criteria := service.DoctorSearch{Name: strings.TrimSpace(c.Query("name"))}

	if raw := c.Query("department_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return criteria, errInvalidQuery("department_id")
		}
		dept := uint(id)
		criteria.DepartmentID = &dept
	}

	for _, value := range c.QueryArray("department_ids") {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				return criteria, errInvalidQuery("department_ids")
			}
			criteria.DepartmentIDs = append(criteria.DepartmentIDs, uint(id))
		}
	}

	if raw := c.Query("status"); raw != "" {
		status, err := strconv.Atoi(raw)
		if err != nil {
			return criteria, errInvalidQuery("status")
		}
		criteria.Status = &status
	}
	return criteria, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string {
	return "Invalid query parameter " + string(e)
}

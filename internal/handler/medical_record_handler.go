package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"appointment-backend/internal/middleware"
	"appointment-backend/internal/models"
	"appointment-backend/internal/service"
	"appointment-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type RecordManager interface {
	Create(ctx context.Context, in service.MedicalRecordInput) (*service.MedicalRecordResponse, error)
	GetByID(ctx context.Context, id uint) (*service.MedicalRecordResponse, bool, error)
	GetByAppointmentID(ctx context.Context, appointmentID uint) (*service.MedicalRecordResponse, bool, error)
	Update(ctx context.Context, id uint, in service.MedicalRecordInput) (*service.MedicalRecordResponse, error)
	Delete(ctx context.Context, id uint, actorID uint) error
	ListByDoctor(ctx context.Context, doctorID uint) ([]service.MedicalRecordResponse, error)
	ListByPatient(ctx context.Context, patientID uint) ([]service.MedicalRecordResponse, error)
	ListByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) ([]service.MedicalRecordResponse, error)
	ListByStatus(ctx context.Context, status int) ([]service.MedicalRecordResponse, error)
}

type RecordExporter interface {
	ExportByDoctor(ctx context.Context, doctorID uint, w io.Writer) error
}

type MedicalRecordHandler struct {
	records  RecordManager
	exporter RecordExporter
	logger   *zap.Logger
}

func NewMedicalRecordHandler(records RecordManager, exporter RecordExporter, logger *zap.Logger) *MedicalRecordHandler {
	return &MedicalRecordHandler{
		records:  records,
		exporter: exporter,
		logger:   logger,
	}
}

// Create stores a record for a confirmed appointment
func (h *MedicalRecordHandler) Create(c *gin.Context) {
	var in service.MedicalRecordInput
	if !bindJSON(c, &in) {
		return
	}

	record, err := h.records.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.CreatedResponse(c, record)
}

func (h *MedicalRecordHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	h.respondOne(c)(h.records.GetByID(c.Request.Context(), id))
}

func (h *MedicalRecordHandler) GetByAppointment(c *gin.Context) {
	appointmentID, ok := uintParam(c, "appointmentId")
	if !ok {
		return
	}
	h.respondOne(c)(h.records.GetByAppointmentID(c.Request.Context(), appointmentID))
}

func (h *MedicalRecordHandler) respondOne(c *gin.Context) func(*service.MedicalRecordResponse, bool, error) {
	return func(record *service.MedicalRecordResponse, found bool, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		if !found {
			utils.ErrorResponse(c, http.StatusNotFound, "medical record not found")
			return
		}
		utils.SuccessResponse(c, record)
	}
}

func (h *MedicalRecordHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var in service.MedicalRecordInput
	if !bindJSON(c, &in) {
		return
	}

	record, err := h.records.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.SuccessResponse(c, record)
}

// Delete removes a record (admin only)
func (h *MedicalRecordHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.records.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	utils.MessageResponse(c, "Medical record deleted successfully")
}

func (h *MedicalRecordHandler) ListByDoctor(c *gin.Context) {
	doctorID, ok := uintParam(c, "doctorId")
	if !ok {
		return
	}
	h.respondList(c)(h.records.ListByDoctor(c.Request.Context(), doctorID))
}

// ListByPatient lets patients read only their own records
func (h *MedicalRecordHandler) ListByPatient(c *gin.Context) {
	patientID, ok := uintParam(c, "patientId")
	if !ok {
		return
	}
	if middleware.CurrentRole(c) == models.RolePatient && middleware.CurrentUserID(c) != patientID {
		utils.ErrorResponse(c, http.StatusForbidden, "Patients may only read their own records")
		return
	}
	h.respondList(c)(h.records.ListByPatient(c.Request.Context(), patientID))
}

func (h *MedicalRecordHandler) ListByDoctorAndPatient(c *gin.Context) {
	doctorID, ok := uintParam(c, "doctorId")
	if !ok {
		return
	}
	patientID, ok := uintParam(c, "patientId")
	if !ok {
		return
	}
	h.respondList(c)(h.records.ListByDoctorAndPatient(c.Request.Context(), doctorID, patientID))
}

func (h *MedicalRecordHandler) ListByStatus(c *gin.Context) {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid status")
		return
	}
	h.respondList(c)(h.records.ListByStatus(c.Request.Context(), status))
}

func (h *MedicalRecordHandler) respondList(c *gin.Context) func([]service.MedicalRecordResponse, error) {
	return func(records []service.MedicalRecordResponse, err error) {
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		utils.ListResponse(c, "records", records)
	}
}

// ExportByDoctor streams the doctor's records as an XLSX attachment
func (h *MedicalRecordHandler) ExportByDoctor(c *gin.Context) {
	doctorID, ok := uintParam(c, "doctorId")
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.ExportByDoctor(c.Request.Context(), doctorID, &buf); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="medical-records-doctor-%d.xlsx"`, doctorID))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

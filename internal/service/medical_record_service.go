package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"appointment-backend/internal/models"
	"appointment-backend/internal/repository"

	"go.uber.org/zap"
)

// AppointmentTimeLayout renders appointment times in record responses
const AppointmentTimeLayout = "2006-01-02T15:04:05"

// MedicalRecordInput carries the writable fields of a record.
// treatment_plan and medication_advice are accepted as aliases; the canonical field wins.
type MedicalRecordInput struct {
	AppointmentID    uint   `json:"appointment_id"`
	DoctorID         uint   `json:"doctor_id"`
	PatientID        uint   `json:"patient_id"`
	Diagnosis        string `json:"diagnosis" binding:"max=1000"`
	Treatment        string `json:"treatment" binding:"max=1000"`
	TreatmentPlan    string `json:"treatment_plan" binding:"max=1000"`
	Medication       string `json:"medication" binding:"max=1000"`
	MedicationAdvice string `json:"medication_advice" binding:"max=1000"`
	Notes            string `json:"notes" binding:"max=2000"`
	Status           *int   `json:"status"`
}

func (in MedicalRecordInput) treatment() string {
	if in.Treatment != "" {
		return in.Treatment
	}
	return in.TreatmentPlan
}

func (in MedicalRecordInput) medication() string {
	if in.Medication != "" {
		return in.Medication
	}
	return in.MedicationAdvice
}

// MedicalRecordResponse is a record enriched with display names and the appointment time
type MedicalRecordResponse struct {
	ID               uint      `json:"id"`
	AppointmentID    uint      `json:"appointment_id"`
	DoctorID         uint      `json:"doctor_id"`
	DoctorName       string    `json:"doctor_name"`
	PatientID        uint      `json:"patient_id"`
	PatientName      string    `json:"patient_name"`
	AppointmentTime  string    `json:"appointment_time"`
	Diagnosis        string    `json:"diagnosis"`
	Treatment        string    `json:"treatment"`
	TreatmentPlan    string    `json:"treatment_plan"`
	Medication       string    `json:"medication"`
	MedicationAdvice string    `json:"medication_advice"`
	Notes            string    `json:"notes"`
	Status           int       `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type MedicalRecordService struct {
	tx           Transactor
	records      RecordStore
	appointments AppointmentStore
	doctors      DoctorStore
	users        UserFinder
	auditRepo    AuditStore
	logger       *zap.Logger
	now          func() time.Time
}

func NewMedicalRecordService(
	tx Transactor,
	records RecordStore,
	appointments AppointmentStore,
	doctors DoctorStore,
	users UserFinder,
	auditRepo AuditStore,
	logger *zap.Logger,
) *MedicalRecordService {
	return &MedicalRecordService{
		tx:           tx,
		records:      records,
		appointments: appointments,
		doctors:      doctors,
		users:        users,
		auditRepo:    auditRepo,
		logger:       logger,
		now:          time.Now,
	}
}

// Create validates the appointment, doctor and patient references and stores a new record.
// At most one record may exist per appointment.
func (s *MedicalRecordService) Create(ctx context.Context, in MedicalRecordInput) (*MedicalRecordResponse, error) {
	switch {
	case in.AppointmentID == 0:
		return nil, invalidArgument("appointment_id is required")
	case in.DoctorID == 0:
		return nil, invalidArgument("doctor_id is required")
	case in.PatientID == 0:
		return nil, invalidArgument("patient_id is required")
	}

	var record *models.MedicalRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		appointment, err := s.appointments.FindByID(ctx, in.AppointmentID)
		if err != nil {
			return lookupErr(err, "appointment", in.AppointmentID)
		}
		doctor, err := s.doctors.FindByID(ctx, in.DoctorID)
		if err != nil {
			return lookupErr(err, "doctor", in.DoctorID)
		}
		patient, err := s.users.FindByID(ctx, in.PatientID)
		if err != nil {
			return lookupErr(err, "patient", in.PatientID)
		}

		exists, err := s.records.ExistsByAppointmentID(ctx, in.AppointmentID)
		if err != nil {
			return fmt.Errorf("failed to check existing record: %w", err)
		}
		if exists {
			return conflict("record already exists for appointment %d", in.AppointmentID)
		}

		now := s.now()
		record = &models.MedicalRecord{
			AppointmentID: in.AppointmentID,
			DoctorID:      in.DoctorID,
			PatientID:     in.PatientID,
			Diagnosis:     in.Diagnosis,
			Treatment:     in.treatment(),
			Medication:    in.medication(),
			Notes:         in.Notes,
			Status:        models.RecordStatusActive,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if in.Status != nil {
			record.Status = *in.Status
		}

		if err := s.records.Create(ctx, record); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflict("record already exists for appointment %d", in.AppointmentID)
			}
			return fmt.Errorf("failed to create medical record: %w", err)
		}

		record.Appointment = appointment
		record.Doctor = doctor
		record.Patient = patient
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("medical record created",
		zap.Uint("record_id", record.ID),
		zap.Uint("appointment_id", record.AppointmentID),
		zap.Uint("doctor_id", record.DoctorID),
	)

	resp := s.toResponse(ctx, record)
	return &resp, nil
}

// GetByID returns the record, or found=false when it does not exist
func (s *MedicalRecordService) GetByID(ctx context.Context, id uint) (*MedicalRecordResponse, bool, error) {
	return s.getOne(ctx, s.records.FindByID, id)
}

// GetByAppointmentID returns the record written for an appointment, or found=false
func (s *MedicalRecordService) GetByAppointmentID(ctx context.Context, appointmentID uint) (*MedicalRecordResponse, bool, error) {
	return s.getOne(ctx, s.records.FindByAppointmentID, appointmentID)
}

func (s *MedicalRecordService) getOne(
	ctx context.Context,
	find func(context.Context, uint) (*models.MedicalRecord, error),
	id uint,
) (*MedicalRecordResponse, bool, error) {
	record, err := find(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get medical record: %w", err)
	}
	resp := s.toResponse(ctx, record)
	return &resp, true, nil
}

// Update overwrites the clinical fields. References to the appointment, doctor and patient never change.
// A nil status keeps the current one.
func (s *MedicalRecordService) Update(ctx context.Context, id uint, in MedicalRecordInput) (*MedicalRecordResponse, error) {
	var record *models.MedicalRecord
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.records.FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "medical record", id)
		}

		record.Diagnosis = in.Diagnosis
		record.Treatment = in.treatment()
		record.Medication = in.medication()
		record.Notes = in.Notes
		if in.Status != nil {
			record.Status = *in.Status
		}
		record.UpdatedAt = s.now()

		if err := s.records.UpdateClinical(ctx, record); err != nil {
			return fmt.Errorf("failed to update medical record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, record)
	return &resp, nil
}

// Delete removes an existing record
func (s *MedicalRecordService) Delete(ctx context.Context, id uint, actorID uint) error {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.records.FindByID(ctx, id); err != nil {
			return lookupErr(err, "medical record", id)
		}
		if err := s.records.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete medical record: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.auditRepo.Record(ctx, models.NewAuditLog(actorID, models.AuditRecordDelete, "medical_record", id, "Deleted medical record %d", id))
	return nil
}

func (s *MedicalRecordService) ListByDoctor(ctx context.Context, doctorID uint) ([]MedicalRecordResponse, error) {
	return s.list(ctx)(s.records.ListByDoctorID(ctx, doctorID))
}

func (s *MedicalRecordService) ListByPatient(ctx context.Context, patientID uint) ([]MedicalRecordResponse, error) {
	return s.list(ctx)(s.records.ListByPatientID(ctx, patientID))
}

func (s *MedicalRecordService) ListByDoctorAndPatient(ctx context.Context, doctorID, patientID uint) ([]MedicalRecordResponse, error) {
	return s.list(ctx)(s.records.ListByDoctorAndPatient(ctx, doctorID, patientID))
}

func (s *MedicalRecordService) ListByStatus(ctx context.Context, status int) ([]MedicalRecordResponse, error) {
	return s.list(ctx)(s.records.ListByStatus(ctx, status))
}

func (s *MedicalRecordService) list(ctx context.Context) func([]models.MedicalRecord, error) ([]MedicalRecordResponse, error) {
	return func(records []models.MedicalRecord, err error) ([]MedicalRecordResponse, error) {
		if err != nil {
			return nil, fmt.Errorf("failed to list medical records: %w", err)
		}
		out := make([]MedicalRecordResponse, 0, len(records))
		for i := range records {
			out = append(out, s.toResponse(ctx, &records[i]))
		}
		return out, nil
	}
}

// toResponse derives the display fields from preloaded relations, falling back to lookups
func (s *MedicalRecordService) toResponse(ctx context.Context, record *models.MedicalRecord) MedicalRecordResponse {
	resp := MedicalRecordResponse{
		ID:               record.ID,
		AppointmentID:    record.AppointmentID,
		DoctorID:         record.DoctorID,
		PatientID:        record.PatientID,
		Diagnosis:        record.Diagnosis,
		Treatment:        record.Treatment,
		TreatmentPlan:    record.Treatment,
		Medication:       record.Medication,
		MedicationAdvice: record.Medication,
		Notes:            record.Notes,
		Status:           record.Status,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}

	doctor := record.Doctor
	if doctor == nil {
		doctor, _ = s.doctors.FindByID(ctx, record.DoctorID)
	}
	if doctor != nil {
		resp.DoctorName = doctor.Name
	}

	patient := record.Patient
	if patient == nil {
		patient, _ = s.users.FindByID(ctx, record.PatientID)
	}
	if patient != nil {
		resp.PatientName = patient.Name
	}

	appointment := record.Appointment
	if appointment == nil {
		appointment, _ = s.appointments.FindByID(ctx, record.AppointmentID)
	}
	if appointment != nil {
		resp.AppointmentTime = appointment.AppointmentTime.Format(AppointmentTimeLayout)
	}

	return resp
}

// lookupErr maps a missing row to a NotFound naming the entity
func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound("%s %d not found", entity, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}

package service

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const recordSheet = "Medical Records"

var recordExportHeader = []string{
	"Record ID",
	"Appointment ID",
	"Appointment Time",
	"Doctor",
	"Patient ID",
	"Patient",
	"Diagnosis",
	"Treatment",
	"Medication",
	"Notes",
	"Status",
	"Created At",
	"Updated At",
}

var recordColumnWidths = []float64{10, 14, 20, 20, 12, 20, 40, 40, 40, 40, 8, 20, 20}

// RecordExportService renders record listings as XLSX workbooks
type RecordExportService struct {
	records *MedicalRecordService
	doctors DoctorStore
}

func NewRecordExportService(records *MedicalRecordService, doctors DoctorStore) *RecordExportService {
	return &RecordExportService{records: records, doctors: doctors}
}

// ExportByDoctor writes one header row and one row per record of the doctor
func (s *RecordExportService) ExportByDoctor(ctx context.Context, doctorID uint, w io.Writer) error {
	if _, err := s.doctors.FindByID(ctx, doctorID); err != nil {
		return lookupErr(err, "doctor", doctorID)
	}
	records, err := s.records.ListByDoctor(ctx, doctorID)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), recordSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(recordSheet, "A1", &recordExportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(recordExportHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(recordSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	for i, width := range recordColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(recordSheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID,
			r.AppointmentID,
			r.AppointmentTime,
			r.DoctorName,
			r.PatientID,
			r.PatientName,
			r.Diagnosis,
			r.Treatment,
			r.Medication,
			r.Notes,
			r.Status,
			r.CreatedAt.Format(AppointmentTimeLayout),
			r.UpdatedAt.Format(AppointmentTimeLayout),
		}
		if err := f.SetSheetRow(recordSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

package models

import "time"

const RecordStatusActive = 1

// MedicalRecord represents the medical_records table.
// A record refers to its appointment, doctor and patient; at most one record exists per appointment.
type MedicalRecord struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AppointmentID uint      `gorm:"not null;uniqueIndex" json:"appointment_id"`
	DoctorID      uint      `gorm:"not null;index" json:"doctor_id"`
	PatientID     uint      `gorm:"not null;index" json:"patient_id"`
	Diagnosis     string    `gorm:"size:1000" json:"diagnosis"`
	Treatment     string    `gorm:"size:1000" json:"treatment"`
	Medication    string    `gorm:"size:1000" json:"medication"`
	Notes         string    `gorm:"size:2000" json:"notes"`
	Status        int       `gorm:"not null;index" json:"status"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`

	// Relationships
	Appointment *Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Doctor      *Doctor      `gorm:"foreignKey:DoctorID" json:"-"`
	Patient     *User        `gorm:"foreignKey:PatientID" json:"-"`
}

// TableName specifies the table name for MedicalRecord model
func (MedicalRecord) TableName() string {
	return "medical_records"
}

package models

import "time"

// Appointment represents the appointments table.
// Booking and slot management live elsewhere; this service only reads appointments.
type Appointment struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PatientID       uint      `gorm:"not null;index" json:"patient_id"`
	DoctorID        uint      `gorm:"not null;index" json:"doctor_id"`
	DepartmentID    uint      `gorm:"index" json:"department_id"`
	AppointmentTime time.Time `gorm:"not null" json:"appointment_time"`
	Status          int       `gorm:"default:0" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName specifies the table name for Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

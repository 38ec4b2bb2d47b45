package models

import (
	"fmt"
	"time"
)

const (
	AuditUserLogin        = "user_login"
	AuditUserRegistration = "user_registration"
	AuditDoctorCreate     = "doctor_create"
	AuditDoctorDelete     = "doctor_delete"
	AuditRecordDelete     = "medical_record_delete"
	AuditSyncRetry        = "user_sync_retry"
)

// AuditLog is one entry of the clinical and admin action trail.
// ActorID is nil for system actions.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ActorID   *uint     `gorm:"column:user_id;index" json:"actor_id"`
	Action    string    `gorm:"size:64;not null;index" json:"action"`
	Entity    string    `gorm:"size:32;index:idx_audit_entity" json:"entity"`
	EntityID  uint      `gorm:"index:idx_audit_entity" json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// NewAuditLog builds an entry about one entity; actorID 0 records a system action
func NewAuditLog(actorID uint, action, entity string, entityID uint, format string, args ...interface{}) *AuditLog {
	entry := &AuditLog{
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  fmt.Sprintf(format, args...),
	}
	if actorID != 0 {
		entry.ActorID = &actorID
	}
	return entry
}

package models

import (
	"encoding/json"
	"time"
)

const (
	SyncActionUpdate = "update"
	SyncActionDelete = "delete"

	SyncStatusPending   = "pending"
	SyncStatusSucceeded = "succeeded"
	SyncStatusFailed    = "failed"
)

// UserSyncTask is an outbox entry for propagating a doctor change to the linked user account.
// It is written in the same transaction as the doctor change and executed after commit.
type UserSyncTask struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	DoctorID    uint       `gorm:"not null;index" json:"doctor_id"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Action      string     `gorm:"type:enum('update','delete');not null" json:"action"`
	Payload     string     `gorm:"type:text" json:"payload,omitempty"`
	Status      string     `gorm:"type:enum('pending','succeeded','failed');default:'pending';index" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	LastError   string     `gorm:"type:text" json:"last_error,omitempty"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for UserSyncTask model
func (UserSyncTask) TableName() string {
	return "user_sync_tasks"
}

// NewProfileSyncTask builds a pending update task carrying the profile as JSON
func NewProfileSyncTask(doctorID, userID uint, profile UserProfile) (*UserSyncTask, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}
	return &UserSyncTask{
		DoctorID: doctorID,
		UserID:   userID,
		Action:   SyncActionUpdate,
		Payload:  string(payload),
		Status:   SyncStatusPending,
	}, nil
}

// NewDeleteSyncTask builds a pending task that removes the linked user account
func NewDeleteSyncTask(doctorID, userID uint) *UserSyncTask {
	return &UserSyncTask{
		DoctorID: doctorID,
		UserID:   userID,
		Action:   SyncActionDelete,
		Status:   SyncStatusPending,
	}
}

// Profile decodes the payload of an update task
func (t *UserSyncTask) Profile() (UserProfile, error) {
	var profile UserProfile
	if t.Payload == "" {
		return profile, nil
	}
	err := json.Unmarshal([]byte(t.Payload), &profile)
	return profile, err
}

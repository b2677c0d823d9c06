package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ProcessingStatus represents the lifecycle state of a meeting record
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// Meeting represents a recorded meeting awaiting or holding analysis results.
// Lifecycle: pending -> processing -> {completed | failed}; completed is terminal.
type Meeting struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization     *Organization    `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	UserID           *uuid.UUID       `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User             *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	MeetingTypeID    *uuid.UUID       `gorm:"type:uuid;index" json:"meeting_type_id,omitempty"`
	MeetingType      *MeetingType     `gorm:"foreignKey:MeetingTypeID" json:"meeting_type,omitempty"`
	Transcript       *string          `gorm:"type:text" json:"transcript,omitempty"`
	MeetingDate      *time.Time       `json:"meeting_date,omitempty"`
	Duration         *int             `json:"duration,omitempty"` // seconds
	ProcessingStatus ProcessingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"processing_status"`
	// CallbackToken is present only while an automation callback is outstanding.
	CallbackToken   *string        `gorm:"type:varchar(128)" json:"-"`
	WebhookMetadata datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"webhook_metadata,omitempty"`
	AnalysisData    datatypes.JSON `gorm:"type:jsonb" json:"analysis_data,omitempty"`
	OverallScore    *float64       `json:"overall_score,omitempty"`
	CreatedAt       time.Time      `gorm:"default:now()" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for Meeting
func (Meeting) TableName() string {
	return "meetings"
}

// IsCompleted checks if the meeting reached its terminal state
func (m *Meeting) IsCompleted() bool {
	return m.ProcessingStatus == ProcessingStatusCompleted
}

// AcceptsCallback reports whether a callback with the presented token may be
// applied. Exact case-sensitive token match; completed meetings never mutate.
func (m *Meeting) AcceptsCallback(token string) bool {
	if m.IsCompleted() {
		return false
	}
	return m.CallbackToken != nil && *m.CallbackToken == token
}

// ClampScore clamps an overall score into the valid [0, 100] range.
func ClampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

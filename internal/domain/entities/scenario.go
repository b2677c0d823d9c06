package entities

import (
	"time"

	"github.com/google/uuid"
)

// DealContext carries the optional CRM deal context attached to an inbound
// webhook. Nil fields mean the value was not provided; a configured scenario
// with a NULL field only matches when that field is absent here (no wildcards).
type DealContext struct {
	PipelineID *string
	StageID    *string
	DealStatus *string
}

// PipedriveScenario maps a Pipedrive (pipeline, stage, deal status) tuple to
// a meeting type.
type PipedriveScenario struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"organization_id"`
	MeetingTypeID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"meeting_type_id"`
	MeetingType    *MeetingType `gorm:"foreignKey:MeetingTypeID" json:"meeting_type,omitempty"`
	PipelineID     *string      `gorm:"type:varchar(64)" json:"pipeline_id,omitempty"`
	StageID        *string      `gorm:"type:varchar(64)" json:"stage_id,omitempty"`
	DealStatus     *string      `gorm:"type:varchar(32)" json:"deal_status,omitempty"`
	OrderIndex     int          `gorm:"not null;default:0" json:"order_index"`
	IsActive       bool         `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time    `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for PipedriveScenario
func (PipedriveScenario) TableName() string {
	return "pipedrive_scenarios"
}

// LivespaceScenario maps a Livespace (process, stage, deal status) tuple to
// a meeting type. Livespace calls its pipelines "processes".
type LivespaceScenario struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"organization_id"`
	MeetingTypeID  uuid.UUID    `gorm:"type:uuid;not null;index" json:"meeting_type_id"`
	MeetingType    *MeetingType `gorm:"foreignKey:MeetingTypeID" json:"meeting_type,omitempty"`
	ProcessID      *string      `gorm:"type:varchar(64)" json:"process_id,omitempty"`
	StageID        *string      `gorm:"type:varchar(64)" json:"stage_id,omitempty"`
	DealStatus     *string      `gorm:"type:varchar(32)" json:"deal_status,omitempty"`
	OrderIndex     int          `gorm:"not null;default:0" json:"order_index"`
	IsActive       bool         `gorm:"default:true;index" json:"is_active"`
	CreatedAt      time.Time    `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time    `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for LivespaceScenario
func (LivespaceScenario) TableName() string {
	return "livespace_scenarios"
}

package entities

import (
	"time"

	"github.com/google/uuid"
)

// MeetingType is an organization-defined template describing the expected
// structure and evaluation criteria for a class of meetings.
type MeetingType struct {
	ID             uuid.UUID               `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrganizationID uuid.UUID               `gorm:"type:uuid;not null;index" json:"organization_id"`
	Name           string                  `gorm:"type:varchar(255);not null" json:"name"`
	Description    *string                 `gorm:"type:text" json:"description,omitempty"`
	// At most one default per organization by convention; not enforced here.
	IsDefault   bool                    `gorm:"default:false;index" json:"is_default"`
	Attributes  []MeetingTypeAttribute  `gorm:"foreignKey:MeetingTypeID" json:"attributes,omitempty"`
	Checkpoints []MeetingTypeCheckpoint `gorm:"foreignKey:MeetingTypeID" json:"checkpoints,omitempty"`
	Criteria    []MeetingTypeCriterion  `gorm:"foreignKey:MeetingTypeID" json:"criteria,omitempty"`
	CreatedAt   time.Time               `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time               `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for MeetingType
func (MeetingType) TableName() string {
	return "meeting_types"
}

// MeetingTypeAttribute is an ordered key/value attribute of a meeting type
type MeetingTypeAttribute struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MeetingTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_type_id"`
	Key           string    `gorm:"type:varchar(255);not null" json:"key"`
	Value         string    `gorm:"type:text" json:"value"`
	OrderIndex    int       `gorm:"not null;default:0" json:"order_index"`
}

// TableName specifies the table name for MeetingTypeAttribute
func (MeetingTypeAttribute) TableName() string {
	return "meeting_type_attributes"
}

// MeetingTypeCheckpoint is an ordered checkpoint expected during a meeting
type MeetingTypeCheckpoint struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MeetingTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_type_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	OrderIndex    int       `gorm:"not null;default:0" json:"order_index"`
}

// TableName specifies the table name for MeetingTypeCheckpoint
func (MeetingTypeCheckpoint) TableName() string {
	return "meeting_type_checkpoints"
}

// MeetingTypeCriterion is an ordered evaluation criterion of a meeting type
type MeetingTypeCriterion struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	MeetingTypeID uuid.UUID `gorm:"type:uuid;not null;index" json:"meeting_type_id"`
	Text          string    `gorm:"type:text;not null" json:"text"`
	OrderIndex    int       `gorm:"not null;default:0" json:"order_index"`
}

// TableName specifies the table name for MeetingTypeCriterion
func (MeetingTypeCriterion) TableName() string {
	return "meeting_type_criteria"
}

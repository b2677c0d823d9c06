package entities

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the role of a user inside an organization
type UserRole string

const (
	UserRoleMember     UserRole = "member"
	UserRoleAdmin      UserRole = "admin"
	UserRoleOwner      UserRole = "owner"
	UserRoleSuperAdmin UserRole = "super_admin"
)

// User represents an application user profile
type User struct {
	ID             uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email          string        `gorm:"type:varchar(255);unique;not null;index" json:"email"`
	FullName       string        `gorm:"type:varchar(255)" json:"full_name"`
	Role           UserRole      `gorm:"type:varchar(20);not null;default:'member';index" json:"role"`
	OrganizationID *uuid.UUID    `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	Organization   *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	EmailSignature *string       `gorm:"type:text" json:"email_signature,omitempty"`
	CreatedAt      time.Time     `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsSuperAdmin checks platform-level admin access
func (u *User) IsSuperAdmin() bool {
	return u.Role == UserRoleSuperAdmin
}

// CanManageOrganization checks whether the user holds owner or admin role
// on the given organization. Super admins pass regardless of membership.
func (u *User) CanManageOrganization(orgID uuid.UUID) bool {
	if u.IsSuperAdmin() {
		return true
	}
	if u.OrganizationID == nil || *u.OrganizationID != orgID {
		return false
	}
	return u.Role == UserRoleOwner || u.Role == UserRoleAdmin
}

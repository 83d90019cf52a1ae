package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the portal an account signs in to.
type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleHospital   Role = "hospital"
	RoleGovernment Role = "government"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCitizen, RoleHospital, RoleGovernment:
		return true
	}
	return false
}

type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Role Role `gorm:"column:role;type:varchar(20);not null;uniqueIndex:idx_accounts_role_login,priority:1"`
	// Login is the NID for citizens, the license number for institutes and
	// an email address for government officers.
	Login        string `gorm:"column:login;type:varchar(255);not null;uniqueIndex:idx_accounts_role_login,priority:2"`
	PasswordHash string `gorm:"column:password_hash;type:varchar(255);not null"`
	DisplayName  string `gorm:"column:display_name;type:varchar(255)"`

	// For hospital accounts, links to the issuing institute
	InstituteID *int64 `gorm:"column:institute_id;index"`
	// For citizen accounts, links to the citizen registry
	NationalID *string `gorm:"column:nid_number;type:varchar(20);index"`

	IsActive         bool       `gorm:"column:is_active;default:true;index"`
	FailedLoginCount int        `gorm:"column:failed_login_count;default:0"`
	LockedUntil      *time.Time `gorm:"column:locked_until"`
	LastLoginAt      *time.Time `gorm:"column:last_login_at"`
}

func (Account) TableName() string {
	return "auth.accounts"
}

// IsLocked returns true if the account is temporarily locked due to failed logins.
func (a *Account) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

type AuditAction string

const (
	ActionCreate AuditAction = "create"
	ActionRead   AuditAction = "read"
	ActionLogin  AuditAction = "login"
)

type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OccurredAt time.Time `gorm:"autoCreateTime;index"`

	// Who
	AccountID uuid.UUID `gorm:"column:account_id;type:uuid;not null;index"`
	Role      Role      `gorm:"column:role;type:varchar(20);not null"`
	IPAddress string    `gorm:"column:ip_address;type:varchar(45)"` // Supports IPv6

	// What
	Action       AuditAction `gorm:"column:action;type:varchar(20);not null;index"`
	ResourceType string      `gorm:"column:resource_type;type:varchar(50);not null;index"`
	ResourceID   string      `gorm:"column:resource_id;type:varchar(50);index"`

	RequestID string `gorm:"column:request_id;type:varchar(50);index"`
	Changes   string `gorm:"column:changes;type:jsonb"`
}

func (AuditLog) TableName() string {
	return "audit.logs"
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	AccountID   uuid.UUID `json:"sub"`
	Role        Role      `json:"role"`
	InstituteID *int64    `json:"institute_id,omitempty"`
	NationalID  *string   `json:"nid_number,omitempty"`
}

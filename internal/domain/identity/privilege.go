package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Reserved wildcard privilege pair. A subject holding it bypasses branch
// membership checks in the scope resolver; it does not satisfy ordinary
// privilege lookups.
const (
	WildcardResource = "all"
	WildcardAction   = "all"
)

var privilegeTokenPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,49}$`)

// Privilege is a named capability defined by a (resource, action) pair,
// e.g. (bill, create). Privileges are system-wide definitions; users are bound
// to them through UserPrivilege grants. Deactivation is the soft-delete path:
// a privilege is never hard-deleted while grants reference it.
type Privilege struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	Resource    string `gorm:"size:50;not null;uniqueIndex:idx_privilege_resource_action" json:"resource"`
	Action      string `gorm:"size:50;not null;uniqueIndex:idx_privilege_resource_action" json:"action"`
	IsActive    bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (Privilege) TableName() string {
	return "privileges"
}

// NewPrivilege creates a new privilege for the given resource/action pair.
// The name is derived as "resource.action".
func NewPrivilege(resource, action, description string) (*Privilege, error) {
	resource = strings.ToLower(strings.TrimSpace(resource))
	action = strings.ToLower(strings.TrimSpace(action))
	if !privilegeTokenPattern.MatchString(resource) {
		return nil, shared.NewDomainError("INVALID_RESOURCE", "Resource must be a short lowercase identifier")
	}
	if !privilegeTokenPattern.MatchString(action) {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action must be a short lowercase identifier")
	}

	return &Privilege{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              resource + "." + action,
		Description:       description,
		Resource:          resource,
		Action:            action,
		IsActive:          true,
	}, nil
}

// Matches checks if the privilege is exactly the given pair. There is no
// hierarchical or prefix matching; callers must request the exact pair.
func (p *Privilege) Matches(resource, action string) bool {
	return p.Resource == resource && p.Action == action
}

// IsWildcard reports whether this is the reserved (all, all) privilege
func (p *Privilege) IsWildcard() bool {
	return p.Resource == WildcardResource && p.Action == WildcardAction
}

// Describe updates the privilege description
func (p *Privilege) Describe(description string) {
	p.Description = description
	p.Touch()
}

// Deactivate soft-deletes the privilege. Grants referencing it stop being
// effective immediately, regardless of their own flags.
func (p *Privilege) Deactivate() {
	p.IsActive = false
	p.Touch()
}

// Activate re-enables the privilege
func (p *Privilege) Activate() {
	p.IsActive = true
	p.Touch()
}

// UserPrivilege binds a subject to a privilege. It records the granting
// subject and an optional expiry timestamp.
type UserPrivilege struct {
	shared.BaseEntity
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	PrivilegeID uuid.UUID  `gorm:"type:uuid;not null;index" json:"privilege_id"`
	GrantedBy   uuid.UUID  `gorm:"type:uuid;not null" json:"granted_by"`
	ExpiresAt   *time.Time `gorm:"" json:"expires_at"`
	IsActive    bool       `gorm:"not null;default:true" json:"is_active"`
	Privilege   Privilege  `gorm:"foreignKey:PrivilegeID" json:"privilege"`
}

// TableName returns the database table name
func (UserPrivilege) TableName() string {
	return "user_privileges"
}

// NewUserPrivilege creates a grant of a privilege to a user
func NewUserPrivilege(userID, privilegeID, grantedBy uuid.UUID, expiresAt *time.Time) (*UserPrivilege, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if privilegeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRIVILEGE", "Privilege ID cannot be empty")
	}
	if grantedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_GRANTOR", "Granting user ID cannot be empty")
	}
	return &UserPrivilege{
		BaseEntity:  shared.NewBaseEntity(),
		UserID:      userID,
		PrivilegeID: privilegeID,
		GrantedBy:   grantedBy,
		ExpiresAt:   expiresAt,
		IsActive:    true,
	}, nil
}

// IsEffective reports whether the grant confers its privilege at the given
// instant: the grant is active, the privilege itself is active, and the grant
// has not expired.
func (up *UserPrivilege) IsEffective(now time.Time) bool {
	if !up.IsActive || !up.Privilege.IsActive {
		return false
	}
	if up.ExpiresAt != nil && !up.ExpiresAt.After(now) {
		return false
	}
	return true
}

// Revoke deactivates the grant
func (up *UserPrivilege) Revoke() {
	up.IsActive = false
	up.Touch()
}

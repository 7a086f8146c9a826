package identity

import (
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Branch is the sub-tenancy unit inside an organization. It owns bills, items
// and categories. An inactive branch rejects all scoped operations, even for
// subjects that otherwise have access.
type Branch struct {
	shared.OrganizationAggregateRoot
	Name     string `gorm:"size:200;not null" json:"name"`
	Address  string `gorm:"size:500" json:"address"`
	Phone    string `gorm:"size:30" json:"phone"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a new branch in the given organization
func NewBranch(organizationID uuid.UUID, name string) (*Branch, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot exceed 200 characters")
	}

	return &Branch{
		OrganizationAggregateRoot: shared.NewOrganizationAggregateRoot(organizationID),
		Name:                      name,
		IsActive:                  true,
	}, nil
}

// Rename changes the branch name
func (b *Branch) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_BRANCH_NAME", "Branch name cannot be empty")
	}
	b.Name = name
	b.Touch()
	return nil
}

// SetContact updates the branch contact details
func (b *Branch) SetContact(address, phone string) {
	b.Address = strings.TrimSpace(address)
	b.Phone = strings.TrimSpace(phone)
	b.Touch()
}

// Deactivate disables the branch; all scoped operations against it will be
// rejected until it is activated again
func (b *Branch) Deactivate() {
	b.IsActive = false
	b.Touch()
}

// Activate re-enables the branch
func (b *Branch) Activate() {
	b.IsActive = true
	b.Touch()
}

// UserBranch links a user to a branch it may work in. CanLogin is the
// membership flag the scope resolver checks; IsPrimary marks the default
// branch shown after login.
type UserBranch struct {
	shared.BaseEntity
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_branch" json:"user_id"`
	BranchID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_branch" json:"branch_id"`
	IsPrimary bool      `gorm:"not null;default:false" json:"is_primary"`
	CanLogin  bool      `gorm:"not null;default:true" json:"can_login"`
}

// TableName returns the database table name
func (UserBranch) TableName() string {
	return "user_branches"
}

// NewUserBranch creates a membership link between a user and a branch
func NewUserBranch(userID, branchID uuid.UUID, isPrimary, canLogin bool) (*UserBranch, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	return &UserBranch{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		BranchID:   branchID,
		IsPrimary:  isPrimary,
		CanLogin:   canLogin,
	}, nil
}

// AllowLogin toggles whether the user may select this branch
func (ub *UserBranch) AllowLogin(canLogin bool) {
	ub.CanLogin = canLogin
	ub.Touch()
}

// MarkPrimary flags this membership as the user's default branch
func (ub *UserBranch) MarkPrimary(isPrimary bool) {
	ub.IsPrimary = isPrimary
	ub.Touch()
}

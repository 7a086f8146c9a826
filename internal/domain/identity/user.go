package identity

import (
	"regexp"
	"strings"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRole is the coarse role tag carried by a user. Fine-grained access is
// decided by privileges, not by the role; the role only gates administrative
// shortcuts such as organization settings.
type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// IsValid checks if the role is a known UserRole
func (r UserRole) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// IsAdministrative reports whether the role grants organization administration
func (r UserRole) IsAdministrative() bool {
	return r == RoleOwner || r == RoleAdmin
}

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// User is a subject that authenticates and performs operations. A user belongs
// to exactly one organization. The password hash is owned by the credential
// verifier; the domain only stores it.
type User struct {
	shared.OrganizationAggregateRoot
	Username     string   `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        string   `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash string   `gorm:"size:100;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:'user'" json:"role"`
	IsActive     bool     `gorm:"not null;default:true" json:"is_active"`
}

// TableName returns the database table name
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user in the given organization
func NewUser(organizationID uuid.UUID, username, email, passwordHash string, role UserRole) (*User, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORGANIZATION", "Organization ID cannot be empty")
	}
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewDomainError("INVALID_USERNAME", "Username must be 3-50 characters of letters, digits, '.', '-' or '_'")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	if passwordHash == "" {
		return nil, shared.NewDomainError("INVALID_PASSWORD_HASH", "Password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown user role")
	}

	return &User{
		OrganizationAggregateRoot: shared.NewOrganizationAggregateRoot(organizationID),
		Username:                  username,
		Email:                     email,
		PasswordHash:              passwordHash,
		Role:                      role,
		IsActive:                  true,
	}, nil
}

// ChangeRole elevates or demotes the user's role
func (u *User) ChangeRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Unknown user role")
	}
	u.Role = role
	u.Touch()
	return nil
}

// ChangeEmail updates the user's email address
func (u *User) ChangeEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	u.Email = email
	u.Touch()
	return nil
}

// SetPasswordHash replaces the stored credential hash
func (u *User) SetPasswordHash(hash string) error {
	if hash == "" {
		return shared.NewDomainError("INVALID_PASSWORD_HASH", "Password hash cannot be empty")
	}
	u.PasswordHash = hash
	u.Touch()
	return nil
}

// Deactivate disables the user without deleting it
func (u *User) Deactivate() {
	u.IsActive = false
	u.Touch()
}

// Activate re-enables the user
func (u *User) Activate() {
	u.IsActive = true
	u.Touch()
}

package identity

import (
	"time"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterInput contains the data to register the first user of a new
// organization
type RegisterInput struct {
	OrganizationName string
	Username         string
	Email            string
	Password         string
}

// LoginInput contains login credentials
type LoginInput struct {
	Username string
	Password string
}

// RefreshInput contains the refresh token to exchange
type RefreshInput struct {
	RefreshToken string
}

// LogoutInput contains the tokens to revoke
type LogoutInput struct {
	AccessToken  string
	RefreshToken string
}

// ChangePasswordInput contains the data for a password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// TokenResult contains an issued token pair
type TokenResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// UserInfo is the read model of an authenticated user
type UserInfo struct {
	ID             uuid.UUID         `json:"id"`
	OrganizationID uuid.UUID         `json:"organization_id"`
	Username       string            `json:"username"`
	Email          string            `json:"email"`
	Role           identity.UserRole `json:"role"`
	IsActive       bool              `json:"is_active"`
	Privileges     []string          `json:"privileges"`
}

// LoginResult contains tokens and the authenticated user
type LoginResult struct {
	Tokens TokenResult `json:"tokens"`
	User   UserInfo    `json:"user"`
}

// CreateUserInput contains the data to create a user in an organization
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	Role     identity.UserRole
}

// UpdateUserInput contains the updatable fields of a user. Nil means leave
// unchanged.
type UpdateUserInput struct {
	Email    *string
	Role     *identity.UserRole
	IsActive *bool
}

// CreateBranchInput contains the data to create a branch
type CreateBranchInput struct {
	Name    string
	Address string
	Phone   string
}

// UpdateBranchInput contains the updatable fields of a branch. Nil means
// leave unchanged.
type UpdateBranchInput struct {
	Name     *string
	Address  *string
	Phone    *string
	IsActive *bool
}

// MembershipInput contains the data to link a user to a branch
type MembershipInput struct {
	UserID    uuid.UUID
	BranchID  uuid.UUID
	IsPrimary bool
	CanLogin  bool
}

// CreatePrivilegeInput contains the data to define a privilege
type CreatePrivilegeInput struct {
	Resource    string
	Action      string
	Description string
}

// GrantInput contains the data to grant a privilege to a user
type GrantInput struct {
	UserID      uuid.UUID
	PrivilegeID uuid.UUID
	ExpiresAt   *time.Time
}

// UpdateOrganizationInput contains the updatable fields of an organization.
// Nil means leave unchanged.
type UpdateOrganizationInput struct {
	Name  *string
	TaxID *string
}

func toUserInfo(user *identity.User, privileges []string) UserInfo {
	if privileges == nil {
		privileges = []string{}
	}
	return UserInfo{
		ID:             user.ID,
		OrganizationID: user.OrganizationID,
		Username:       user.Username,
		Email:          user.Email,
		Role:           user.Role,
		IsActive:       user.IsActive,
		Privileges:     privileges,
	}
}

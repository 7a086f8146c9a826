package identity

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByIDForOrganization finds a user by ID within an organization
	FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*User, error)

	// FindByUsername finds a user by its globally unique username
	FindByUsername(ctx context.Context, username string) (*User, error)

	// FindByEmail finds a user by its globally unique email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAllForOrganization lists users of an organization
	FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]User, error)

	// CountForOrganization counts users of an organization
	CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// DeleteForOrganization removes a user. Deleting a user cascades to its
	// bills; callers surface that as an explicit, documented destructive action.
	DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error
}

package identity

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PrivilegeRepository defines the interface for privilege persistence
type PrivilegeRepository interface {
	// FindByID finds a privilege by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Privilege, error)

	// FindByName finds a privilege by its unique name
	FindByName(ctx context.Context, name string) (*Privilege, error)

	// FindByResourceAction finds a privilege by its unique (resource, action) pair
	FindByResourceAction(ctx context.Context, resource, action string) (*Privilege, error)

	// FindAll lists privileges
	FindAll(ctx context.Context, filter shared.Filter) ([]Privilege, error)

	// FindAllActive lists the whole active privilege catalog, unpaginated
	FindAllActive(ctx context.Context) ([]Privilege, error)

	// Count counts privileges
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a privilege
	Save(ctx context.Context, privilege *Privilege) error
}

// UserPrivilegeRepository defines the interface for privilege grants
type UserPrivilegeRepository interface {
	// FindByID finds a grant by ID, privilege preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*UserPrivilege, error)

	// FindForUser lists a user's active grants, privilege preloaded. Expiry
	// and privilege activation are evaluated by the caller, not the query.
	FindForUser(ctx context.Context, userID uuid.UUID) ([]UserPrivilege, error)

	// FindForUserByResourceAction lists a user's active grants whose privilege
	// matches the exact (resource, action) pair, privilege preloaded
	FindForUserByResourceAction(ctx context.Context, userID uuid.UUID, resource, action string) ([]UserPrivilege, error)

	// FindGrant finds the grant binding a user to a privilege, if any
	FindGrant(ctx context.Context, userID, privilegeID uuid.UUID) (*UserPrivilege, error)

	// FindForPrivilege lists active grants of a privilege
	FindForPrivilege(ctx context.Context, privilegeID uuid.UUID) ([]UserPrivilege, error)

	// Save creates or updates a grant
	Save(ctx context.Context, grant *UserPrivilege) error
}

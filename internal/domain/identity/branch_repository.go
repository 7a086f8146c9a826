package identity

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchRepository defines the interface for branch persistence and
// user-branch membership links
type BranchRepository interface {
	// FindByID finds a branch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)

	// FindByIDForOrganization finds a branch by ID within an organization
	FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*Branch, error)

	// FindAllForOrganization lists branches of an organization
	FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Branch, error)

	// CountForOrganization counts branches of an organization
	CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a branch
	Save(ctx context.Context, branch *Branch) error

	// DeleteForOrganization removes a branch
	DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error

	// FindMembership finds the membership link between a user and a branch
	FindMembership(ctx context.Context, userID, branchID uuid.UUID) (*UserBranch, error)

	// FindMembershipsForUser lists all branch memberships of a user
	FindMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]UserBranch, error)

	// SaveMembership creates or updates a membership link
	SaveMembership(ctx context.Context, membership *UserBranch) error

	// DeleteMembership removes a membership link
	DeleteMembership(ctx context.Context, userID, branchID uuid.UUID) error

	// ClearPrimaryForUser unsets the primary flag on all of a user's memberships
	ClearPrimaryForUser(ctx context.Context, userID uuid.UUID) error
}

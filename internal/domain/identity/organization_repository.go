package identity

import (
	"context"

	"github.com/google/uuid"
)

// OrganizationRepository defines the interface for organization persistence
type OrganizationRepository interface {
	// FindByID finds an organization by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)

	// Save creates or updates an organization
	Save(ctx context.Context, org *Organization) error
}

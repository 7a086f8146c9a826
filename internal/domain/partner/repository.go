package partner

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByIDForOrganization finds a client by ID within an organization
	FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*Client, error)

	// FindAllForOrganization lists clients of an organization
	FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]Client, error)

	// CountForOrganization counts clients of an organization
	CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// DeleteForOrganization removes a client
	DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error
}

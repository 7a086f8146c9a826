package partner

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/partner"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles the organization's billing counterparties
type ClientService struct {
	clientRepo partner.ClientRepository
	logger     *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(clientRepo partner.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// CreateClient creates a client in the organization
func (s *ClientService) CreateClient(ctx context.Context, organizationID uuid.UUID, input CreateClientInput) (*partner.Client, error) {
	client, err := partner.NewClient(organizationID, input.Name)
	if err != nil {
		return nil, err
	}
	client.SetIdentification(input.Identifier, input.TaxID)
	client.SetContact(input.Email, input.Phone, input.Address)

	if err := s.clientRepo.Save(ctx, client); err != nil {
		s.logger.Error("Failed to save client", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Client created",
		zap.String("organization_id", organizationID.String()),
		zap.String("client_id", client.ID.String()),
		zap.String("name", client.Name))
	return client, nil
}

// GetClient returns a client of the organization
func (s *ClientService) GetClient(ctx context.Context, organizationID, id uuid.UUID) (*partner.Client, error) {
	client, err := s.clientRepo.FindByIDForOrganization(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	return client, nil
}

// ListClients returns a page of the organization's clients
func (s *ClientService) ListClients(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[partner.Client], error) {
	var empty shared.Paginated[partner.Client]

	clients, err := s.clientRepo.FindAllForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}
	total, err := s.clientRepo.CountForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}
	return shared.NewPaginated(clients, total, filter.Page, filter.Limit()), nil
}

// UpdateClient applies the non-nil fields of input
func (s *ClientService) UpdateClient(ctx context.Context, organizationID, id uuid.UUID, input UpdateClientInput) (*partner.Client, error) {
	client, err := s.GetClient(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := client.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Identifier != nil || input.TaxID != nil {
		identifier := client.Identifier
		taxID := client.TaxID
		if input.Identifier != nil {
			identifier = *input.Identifier
		}
		if input.TaxID != nil {
			taxID = *input.TaxID
		}
		client.SetIdentification(identifier, taxID)
	}
	if input.Email != nil || input.Phone != nil || input.Address != nil {
		email := client.Email
		phone := client.Phone
		address := client.Address
		if input.Email != nil {
			email = *input.Email
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		if input.Address != nil {
			address = *input.Address
		}
		client.SetContact(email, phone, address)
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		s.logger.Error("Failed to save client", zap.Error(err))
		return nil, err
	}
	return client, nil
}

// DeleteClient removes a client. Bills referencing it keep the reference for
// history.
func (s *ClientService) DeleteClient(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.clientRepo.DeleteForOrganization(ctx, organizationID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		return err
	}

	s.logger.Info("Client deleted",
		zap.String("organization_id", organizationID.String()),
		zap.String("client_id", id.String()))
	return nil
}

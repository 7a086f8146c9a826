package identity

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrganizationService handles organization settings
type OrganizationService struct {
	orgRepo identity.OrganizationRepository
	logger  *zap.Logger
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(orgRepo identity.OrganizationRepository, logger *zap.Logger) *OrganizationService {
	return &OrganizationService{orgRepo: orgRepo, logger: logger}
}

// GetOrganization returns the caller's organization
func (s *OrganizationService) GetOrganization(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ORGANIZATION_NOT_FOUND", "Organization not found")
		}
		return nil, err
	}
	return org, nil
}

// UpdateOrganization applies the non-nil fields of input
func (s *OrganizationService) UpdateOrganization(ctx context.Context, id uuid.UUID, input UpdateOrganizationInput) (*identity.Organization, error) {
	org, err := s.GetOrganization(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := org.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.TaxID != nil {
		org.SetTaxID(*input.TaxID)
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		s.logger.Error("Failed to save organization", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Organization updated", zap.String("organization_id", org.ID.String()))
	return org, nil
}

package catalog

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaxRateService handles organization tax rates
type TaxRateService struct {
	taxRateRepo catalog.TaxRateRepository
	logger      *zap.Logger
}

// NewTaxRateService creates a new tax rate service
func NewTaxRateService(taxRateRepo catalog.TaxRateRepository, logger *zap.Logger) *TaxRateService {
	return &TaxRateService{taxRateRepo: taxRateRepo, logger: logger}
}

// CreateTaxRate creates a tax rate in the organization
func (s *TaxRateService) CreateTaxRate(ctx context.Context, organizationID uuid.UUID, input CreateTaxRateInput) (*catalog.TaxRate, error) {
	rate, err := catalog.NewTaxRate(organizationID, input.Name, input.Percentage)
	if err != nil {
		return nil, err
	}

	if err := s.taxRateRepo.Save(ctx, rate); err != nil {
		s.logger.Error("Failed to save tax rate", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Tax rate created",
		zap.String("organization_id", organizationID.String()),
		zap.String("tax_rate_id", rate.ID.String()),
		zap.String("name", rate.Name),
		zap.String("percentage", rate.Percentage.String()))
	return rate, nil
}

// GetTaxRate returns a tax rate of the organization
func (s *TaxRateService) GetTaxRate(ctx context.Context, organizationID, id uuid.UUID) (*catalog.TaxRate, error) {
	rate, err := s.taxRateRepo.FindByIDForOrganization(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TAX_RATE_NOT_FOUND", "Tax rate not found")
		}
		return nil, err
	}
	return rate, nil
}

// ListTaxRates lists the organization's tax rates. Organizations carry a
// handful of rates, so the listing is not paginated.
func (s *TaxRateService) ListTaxRates(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]catalog.TaxRate, error) {
	return s.taxRateRepo.FindAllForOrganization(ctx, organizationID, filter)
}

// UpdateTaxRate applies the non-nil fields of input. A percentage change
// takes effect on every bill's next recalculation.
func (s *TaxRateService) UpdateTaxRate(ctx context.Context, organizationID, id uuid.UUID, input UpdateTaxRateInput) (*catalog.TaxRate, error) {
	rate, err := s.GetTaxRate(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := rate.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Percentage != nil {
		if err := rate.SetPercentage(*input.Percentage); err != nil {
			return nil, err
		}
	}
	if input.IsActive != nil {
		if *input.IsActive {
			rate.IsActive = true
			rate.Touch()
		} else {
			rate.Deactivate()
		}
	}

	if err := s.taxRateRepo.Save(ctx, rate); err != nil {
		s.logger.Error("Failed to save tax rate", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Tax rate updated",
		zap.String("tax_rate_id", rate.ID.String()),
		zap.String("percentage", rate.Percentage.String()))
	return rate, nil
}

// DeleteTaxRate removes a tax rate. Rates referenced by catalog items cannot
// be deleted; deactivate them instead.
func (s *TaxRateService) DeleteTaxRate(ctx context.Context, organizationID, id uuid.UUID) error {
	if _, err := s.GetTaxRate(ctx, organizationID, id); err != nil {
		return err
	}

	inUse, err := s.taxRateRepo.CountItemsUsingRate(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return shared.NewDomainError("TAX_RATE_IN_USE", "Tax rate is referenced by catalog items")
	}

	if err := s.taxRateRepo.DeleteForOrganization(ctx, organizationID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("TAX_RATE_NOT_FOUND", "Tax rate not found")
		}
		return err
	}

	s.logger.Info("Tax rate deleted",
		zap.String("organization_id", organizationID.String()),
		zap.String("tax_rate_id", id.String()))
	return nil
}

package catalog

import (
	"context"

	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockItemRepository is a mock implementation of ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, branchID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]catalog.Item, error) {
	args := m.Called(ctx, branchID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, branchID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error {
	args := m.Called(ctx, branchID, id)
	return args.Error(0)
}

func (m *MockItemRepository) CurrentTaxPercentages(ctx context.Context, itemIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	args := m.Called(ctx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]decimal.Decimal), args.Error(1)
}

// MockTaxRateRepository is a mock implementation of TaxRateRepository
type MockTaxRateRepository struct {
	mock.Mock
}

func (m *MockTaxRateRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*catalog.TaxRate, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]catalog.TaxRate, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.TaxRate), args.Error(1)
}

func (m *MockTaxRateRepository) Save(ctx context.Context, rate *catalog.TaxRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockTaxRateRepository) CountItemsUsingRate(ctx context.Context, rateID uuid.UUID) (int64, error) {
	args := m.Called(ctx, rateID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTaxRateRepository) DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*catalog.Category, error) {
	args := m.Called(ctx, branchID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]catalog.Category, error) {
	args := m.Called(ctx, branchID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Category), args.Error(1)
}

func (m *MockCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error {
	args := m.Called(ctx, branchID, id)
	return args.Error(0)
}

// Interface compliance checks
var (
	_ catalog.ItemRepository     = (*MockItemRepository)(nil)
	_ catalog.TaxRateRepository  = (*MockTaxRateRepository)(nil)
	_ catalog.CategoryRepository = (*MockCategoryRepository)(nil)
)

package identity

import (
	"context"

	"github.com/facturo/backend/internal/domain/billing"
	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of OrganizationRepository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

// MockBranchRepository is a mock implementation of BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByIDForOrganization(ctx context.Context, organizationID, id uuid.UUID) (*identity.Branch, error) {
	args := m.Called(ctx, organizationID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAllForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) ([]identity.Branch, error) {
	args := m.Called(ctx, organizationID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Branch), args.Error(1)
}

func (m *MockBranchRepository) CountForOrganization(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, organizationID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, branch *identity.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) DeleteForOrganization(ctx context.Context, organizationID, id uuid.UUID) error {
	args := m.Called(ctx, organizationID, id)
	return args.Error(0)
}

func (m *MockBranchRepository) FindMembership(ctx context.Context, userID, branchID uuid.UUID) (*identity.UserBranch, error) {
	args := m.Called(ctx, userID, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserBranch), args.Error(1)
}

func (m *MockBranchRepository) FindMembershipsForUser(ctx context.Context, userID uuid.UUID) ([]identity.UserBranch, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserBranch), args.Error(1)
}

func (m *MockBranchRepository) SaveMembership(ctx context.Context, membership *identity.UserBranch) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

func (m *MockBranchRepository) DeleteMembership(ctx context.Context, userID, branchID uuid.UUID) error {
	args := m.Called(ctx, userID, branchID)
	return args.Error(0)
}

func (m *MockBranchRepository) ClearPrimaryForUser(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockPrivilegeRepository is a mock implementation of PrivilegeRepository
type MockPrivilegeRepository struct {
	mock.Mock
}

func (m *MockPrivilegeRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Privilege, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Privilege), args.Error(1)
}

func (m *MockPrivilegeRepository) FindByName(ctx context.Context, name string) (*identity.Privilege, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Privilege), args.Error(1)
}

func (m *MockPrivilegeRepository) FindByResourceAction(ctx context.Context, resource, action string) (*identity.Privilege, error) {
	args := m.Called(ctx, resource, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Privilege), args.Error(1)
}

func (m *MockPrivilegeRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Privilege, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Privilege), args.Error(1)
}

func (m *MockPrivilegeRepository) FindAllActive(ctx context.Context) ([]identity.Privilege, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.Privilege), args.Error(1)
}

func (m *MockPrivilegeRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPrivilegeRepository) Save(ctx context.Context, privilege *identity.Privilege) error {
	args := m.Called(ctx, privilege)
	return args.Error(0)
}

// MockUserPrivilegeRepository is a mock implementation of UserPrivilegeRepository
type MockUserPrivilegeRepository struct {
	mock.Mock
}

func (m *MockUserPrivilegeRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.UserPrivilege, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserPrivilege), args.Error(1)
}

func (m *MockUserPrivilegeRepository) FindForUser(ctx context.Context, userID uuid.UUID) ([]identity.UserPrivilege, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserPrivilege), args.Error(1)
}

func (m *MockUserPrivilegeRepository) FindForUserByResourceAction(ctx context.Context, userID uuid.UUID, resource, action string) ([]identity.UserPrivilege, error) {
	args := m.Called(ctx, userID, resource, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserPrivilege), args.Error(1)
}

func (m *MockUserPrivilegeRepository) FindGrant(ctx context.Context, userID, privilegeID uuid.UUID) (*identity.UserPrivilege, error) {
	args := m.Called(ctx, userID, privilegeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserPrivilege), args.Error(1)
}

func (m *MockUserPrivilegeRepository) FindForPrivilege(ctx context.Context, privilegeID uuid.UUID) ([]identity.UserPrivilege, error) {
	args := m.Called(ctx, privilegeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.UserPrivilege), args.Error(1)
}

func (m *MockUserPrivilegeRepository) Save(ctx context.Context, grant *identity.UserPrivilege) error {
	args := m.Called(ctx, grant)
	return args.Error(0)
}

// MockBillRepository is a mock implementation of BillRepository
type MockBillRepository struct {
	mock.Mock
}

func (m *MockBillRepository) FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, branchID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindByPublicIDForBranch(ctx context.Context, branchID, publicID uuid.UUID) (*billing.Bill, error) {
	args := m.Called(ctx, branchID, publicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Bill), args.Error(1)
}

func (m *MockBillRepository) FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]billing.Bill, error) {
	args := m.Called(ctx, branchID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Bill), args.Error(1)
}

func (m *MockBillRepository) CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, branchID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	args := m.Called(ctx, bill)
	return args.Error(0)
}

func (m *MockBillRepository) MutateWithLock(ctx context.Context, branchID, billID uuid.UUID, fn func(bill *billing.Bill) error) (*billing.Bill, error) {
	args := m.Called(ctx, branchID, billID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	bill := args.Get(0).(*billing.Bill)
	if err := fn(bill); err != nil {
		return nil, err
	}
	return bill, args.Error(1)
}

func (m *MockBillRepository) DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error {
	args := m.Called(ctx, branchID, id)
	return args.Error(0)
}

// Interface compliance checks
var (
	_ identity.UserRepository          = (*MockUserRepository)(nil)
	_ identity.OrganizationRepository  = (*MockOrganizationRepository)(nil)
	_ identity.BranchRepository        = (*MockBranchRepository)(nil)
	_ identity.PrivilegeRepository     = (*MockPrivilegeRepository)(nil)
	_ identity.UserPrivilegeRepository = (*MockUserPrivilegeRepository)(nil)
	_ billing.BillRepository           = (*MockBillRepository)(nil)
)

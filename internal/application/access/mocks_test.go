package access

import (
	"context"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserPrivilegeRepository is a mock implementation of identity.UserPrivilegeRepository
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

// MockBranchRepository is a mock implementation of identity.BranchRepository
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

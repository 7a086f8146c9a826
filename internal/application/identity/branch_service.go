package identity

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BranchService handles branch administration and user-branch memberships
type BranchService struct {
	branchRepo identity.BranchRepository
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

// NewBranchService creates a new branch administration service
func NewBranchService(branchRepo identity.BranchRepository, userRepo identity.UserRepository, logger *zap.Logger) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// CreateBranch creates a branch in the organization
func (s *BranchService) CreateBranch(ctx context.Context, organizationID uuid.UUID, input CreateBranchInput) (*identity.Branch, error) {
	branch, err := identity.NewBranch(organizationID, input.Name)
	if err != nil {
		return nil, err
	}
	branch.SetContact(input.Address, input.Phone)

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		s.logger.Error("Failed to save branch", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Branch created",
		zap.String("organization_id", organizationID.String()),
		zap.String("branch_id", branch.ID.String()),
		zap.String("name", branch.Name))
	return branch, nil
}

// GetBranch returns a branch of the organization
func (s *BranchService) GetBranch(ctx context.Context, organizationID, id uuid.UUID) (*identity.Branch, error) {
	branch, err := s.branchRepo.FindByIDForOrganization(ctx, organizationID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
		}
		return nil, err
	}
	return branch, nil
}

// ListBranches returns a page of the organization's branches
func (s *BranchService) ListBranches(ctx context.Context, organizationID uuid.UUID, filter shared.Filter) (shared.Paginated[identity.Branch], error) {
	var empty shared.Paginated[identity.Branch]

	branches, err := s.branchRepo.FindAllForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}
	total, err := s.branchRepo.CountForOrganization(ctx, organizationID, filter)
	if err != nil {
		return empty, err
	}
	return shared.NewPaginated(branches, total, filter.Page, filter.Limit()), nil
}

// UpdateBranch applies the non-nil fields of input to the branch
func (s *BranchService) UpdateBranch(ctx context.Context, organizationID, id uuid.UUID, input UpdateBranchInput) (*identity.Branch, error) {
	branch, err := s.GetBranch(ctx, organizationID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := branch.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.Address != nil || input.Phone != nil {
		address := branch.Address
		phone := branch.Phone
		if input.Address != nil {
			address = *input.Address
		}
		if input.Phone != nil {
			phone = *input.Phone
		}
		branch.SetContact(address, phone)
	}
	if input.IsActive != nil {
		if *input.IsActive {
			branch.Activate()
		} else {
			branch.Deactivate()
		}
	}

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		s.logger.Error("Failed to save branch", zap.Error(err))
		return nil, err
	}
	return branch, nil
}

// DeleteBranch removes a branch and its membership links
func (s *BranchService) DeleteBranch(ctx context.Context, organizationID, id uuid.UUID) error {
	if err := s.branchRepo.DeleteForOrganization(ctx, organizationID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
		}
		return err
	}

	s.logger.Info("Branch deleted",
		zap.String("organization_id", organizationID.String()),
		zap.String("branch_id", id.String()))
	return nil
}

// AssignUser links a user to a branch, updating the link if it already
// exists. Marking a membership primary clears the user's previous primary.
func (s *BranchService) AssignUser(ctx context.Context, organizationID uuid.UUID, input MembershipInput) (*identity.UserBranch, error) {
	// both ends must belong to the caller's organization
	if _, err := s.userRepo.FindByIDForOrganization(ctx, organizationID, input.UserID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if _, err := s.branchRepo.FindByIDForOrganization(ctx, organizationID, input.BranchID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("BRANCH_NOT_FOUND", "Branch not found")
		}
		return nil, err
	}

	if input.IsPrimary {
		if err := s.branchRepo.ClearPrimaryForUser(ctx, input.UserID); err != nil {
			return nil, err
		}
	}

	membership, err := s.branchRepo.FindMembership(ctx, input.UserID, input.BranchID)
	switch {
	case err == nil:
		membership.AllowLogin(input.CanLogin)
		membership.MarkPrimary(input.IsPrimary)
	case errors.Is(err, shared.ErrNotFound):
		membership, err = identity.NewUserBranch(input.UserID, input.BranchID, input.IsPrimary, input.CanLogin)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.branchRepo.SaveMembership(ctx, membership); err != nil {
		s.logger.Error("Failed to save membership", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Branch membership saved",
		zap.String("user_id", input.UserID.String()),
		zap.String("branch_id", input.BranchID.String()),
		zap.Bool("is_primary", input.IsPrimary),
		zap.Bool("can_login", input.CanLogin))
	return membership, nil
}

// RemoveUser unlinks a user from a branch
func (s *BranchService) RemoveUser(ctx context.Context, userID, branchID uuid.UUID) error {
	if err := s.branchRepo.DeleteMembership(ctx, userID, branchID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("MEMBERSHIP_NOT_FOUND", "User is not assigned to this branch")
		}
		return err
	}
	return nil
}

// ListUserBranches lists the branch memberships of a user
func (s *BranchService) ListUserBranches(ctx context.Context, userID uuid.UUID) ([]identity.UserBranch, error) {
	return s.branchRepo.FindMembershipsForUser(ctx, userID)
}

package access

import (
	"context"

	"github.com/facturo/backend/internal/domain/identity"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Subject carries the identity attributes a request acts under. BranchID is
// the caller-selected branch, nil when the request did not name one.
type Subject struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	BranchID       *uuid.UUID
}

// ScopeResolver turns a subject's branch selection into a verified tenancy
// scope. Resolution is a pure function of the request and current tenancy
// state; failures are never retried.
type ScopeResolver struct {
	branchRepo identity.BranchRepository
	oracle     *PrivilegeOracle
	logger     *zap.Logger
}

// NewScopeResolver creates a new scope resolver
func NewScopeResolver(branchRepo identity.BranchRepository, oracle *PrivilegeOracle, logger *zap.Logger) *ScopeResolver {
	return &ScopeResolver{
		branchRepo: branchRepo,
		oracle:     oracle,
		logger:     logger,
	}
}

// Resolve verifies the subject's branch selection against the requirement.
//
// ScopeOrganization needs no selector and resolves to the subject's whole
// organization. ScopeBranch requires a selector naming an existing, active
// branch of the subject's organization that the subject is a member of; a
// wildcard holder skips only the membership check, never existence or
// activation.
func (r *ScopeResolver) Resolve(ctx context.Context, subject Subject, req shared.ScopeRequirement) (shared.Scope, error) {
	if req == shared.ScopeOrganization {
		return shared.OrganizationScope(subject.OrganizationID), nil
	}

	if subject.BranchID == nil {
		return shared.Scope{}, shared.ErrScopeMissing
	}
	branchID := *subject.BranchID

	branch, err := r.branchRepo.FindByIDForOrganization(ctx, subject.OrganizationID, branchID)
	if err != nil || branch == nil {
		// A branch of another organization resolves the same as a missing one
		return shared.Scope{}, shared.ErrScopeNotFound
	}
	if !branch.IsActive {
		return shared.Scope{}, shared.ErrScopeInactive
	}

	wildcard, err := r.oracle.HasWildcard(ctx, subject.UserID)
	if err != nil {
		return shared.Scope{}, err
	}
	if !wildcard {
		membership, err := r.branchRepo.FindMembership(ctx, subject.UserID, branchID)
		if err != nil || membership == nil || !membership.CanLogin {
			r.logger.Debug("Branch membership refused",
				zap.String("user_id", subject.UserID.String()),
				zap.String("branch_id", branchID.String()))
			return shared.Scope{}, shared.ErrScopeForbidden
		}
	}

	return shared.BranchScope(subject.OrganizationID, branchID), nil
}

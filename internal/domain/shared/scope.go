package shared

import "github.com/google/uuid"

// ScopeRequirement declares the tenancy level an operation executes at.
type ScopeRequirement int

const (
	// ScopeOrganization requires only the subject's organization.
	ScopeOrganization ScopeRequirement = iota
	// ScopeBranch additionally requires a resolved, active, accessible branch.
	ScopeBranch
)

// Scope is the resolved tenancy boundary an operation is restricted to.
// Every repository read or write of tenant data must be filtered by it.
type Scope struct {
	OrganizationID uuid.UUID
	BranchID       *uuid.UUID
}

// OrganizationScope builds a scope covering a whole organization
func OrganizationScope(organizationID uuid.UUID) Scope {
	return Scope{OrganizationID: organizationID}
}

// BranchScope builds a scope narrowed to a single branch
func BranchScope(organizationID, branchID uuid.UUID) Scope {
	return Scope{OrganizationID: organizationID, BranchID: &branchID}
}

// HasBranch reports whether the scope is narrowed to a branch
func (s Scope) HasBranch() bool {
	return s.BranchID != nil
}

// Branch returns the branch id; uuid.Nil when the scope is organization-wide
func (s Scope) Branch() uuid.UUID {
	if s.BranchID == nil {
		return uuid.Nil
	}
	return *s.BranchID
}

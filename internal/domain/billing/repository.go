package billing

import (
	"context"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillRepository defines the interface for bill persistence
type BillRepository interface {
	// FindByIDForBranch finds a bill by ID within a branch, lines preloaded
	FindByIDForBranch(ctx context.Context, branchID, id uuid.UUID) (*Bill, error)

	// FindByPublicIDForBranch finds a bill by its opaque public identifier
	FindByPublicIDForBranch(ctx context.Context, branchID, publicID uuid.UUID) (*Bill, error)

	// FindAllForBranch lists bills of a branch (lines not preloaded)
	FindAllForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Bill, error)

	// CountForBranch counts bills of a branch
	CountForBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByUser counts bills created by a user. Used before user deletion to
	// surface the cascade.
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)

	// Save creates or updates a bill together with its lines
	Save(ctx context.Context, bill *Bill) error

	// MutateWithLock loads the bill (lines included) under a per-bill row lock,
	// applies fn, and persists the bill, its lines and its derived totals in
	// the same transaction. Any error from fn aborts the transaction, so a
	// line change and the totals rewrite succeed or fail together. Two
	// concurrent mutations of the same bill serialize on the lock; other
	// bills are unaffected.
	MutateWithLock(ctx context.Context, branchID, billID uuid.UUID, fn func(bill *Bill) error) (*Bill, error)

	// DeleteForBranch removes a bill and its lines
	DeleteForBranch(ctx context.Context, branchID, id uuid.UUID) error
}

package billing

import (
	"context"
	"errors"

	"github.com/facturo/backend/internal/domain/billing"
	"github.com/facturo/backend/internal/domain/catalog"
	"github.com/facturo/backend/internal/domain/partner"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillService implements bill lifecycle and line mutations. Every line
// mutation runs under the bill's row lock and ends with a totals
// recalculation, so stored totals never drift from the lines. All methods
// take an already-resolved branch scope.
type BillService struct {
	billRepo   billing.BillRepository
	itemRepo   catalog.ItemRepository
	clientRepo partner.ClientRepository
	logger     *zap.Logger
}

// NewBillService creates a new bill service
func NewBillService(
	billRepo billing.BillRepository,
	itemRepo catalog.ItemRepository,
	clientRepo partner.ClientRepository,
	logger *zap.Logger,
) *BillService {
	return &BillService{
		billRepo:   billRepo,
		itemRepo:   itemRepo,
		clientRepo: clientRepo,
		logger:     logger,
	}
}

// errBillNotFound covers bills absent from the scope's branch, whether they
// do not exist at all or belong to another branch.
func errBillNotFound() *shared.DomainError {
	return shared.NewDomainError("BILL_NOT_FOUND", "Bill not found")
}

// billLookupError maps the repository's missing-row sentinel to BILL_NOT_FOUND.
// Any other repository error is an infrastructure failure, not a missing bill.
func (s *BillService) billLookupError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errBillNotFound()
	}
	s.logger.Error("Bill lookup failed", zap.Error(err))
	return shared.NewDomainError("INTERNAL_ERROR", "Failed to load bill")
}

// mutationError interprets MutateWithLock failures: the bare missing-row
// sentinel can only come from the bill fetch, since line misses are renamed
// inside the mutation. Domain errors pass through unchanged.
func mutationError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return errBillNotFound()
	}
	return err
}

// CreateBill creates an empty draft bill in the scope's branch
func (s *BillService) CreateBill(ctx context.Context, scope shared.Scope, userID uuid.UUID, input CreateBillInput) (*BillResult, error) {
	bill, err := billing.NewBill(scope.Branch(), userID, input.Title)
	if err != nil {
		return nil, err
	}
	if input.Description != "" {
		bill.Describe(input.Description)
	}
	if input.ClientID != nil {
		if _, err := s.clientRepo.FindByIDForOrganization(ctx, scope.OrganizationID, *input.ClientID); err != nil {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
		bill.AssignClient(input.ClientID)
	}

	if err := s.billRepo.Save(ctx, bill); err != nil {
		s.logger.Error("Failed to save bill", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create bill")
	}

	s.logger.Info("Bill created",
		zap.String("bill_id", bill.ID.String()),
		zap.String("branch_id", bill.BranchID.String()))
	return toBillResult(bill), nil
}

// GetBill fetches a bill with its lines and stored totals
func (s *BillService) GetBill(ctx context.Context, scope shared.Scope, billID uuid.UUID) (*BillResult, error) {
	bill, err := s.billRepo.FindByIDForBranch(ctx, scope.Branch(), billID)
	if err != nil {
		return nil, s.billLookupError(err)
	}
	return toBillResult(bill), nil
}

// GetBillByPublicID fetches a bill by its opaque public identifier
func (s *BillService) GetBillByPublicID(ctx context.Context, scope shared.Scope, publicID uuid.UUID) (*BillResult, error) {
	bill, err := s.billRepo.FindByPublicIDForBranch(ctx, scope.Branch(), publicID)
	if err != nil {
		return nil, s.billLookupError(err)
	}
	return toBillResult(bill), nil
}

// ListBills lists the bills of the scope's branch
func (s *BillService) ListBills(ctx context.Context, scope shared.Scope, filter shared.Filter) (*shared.Paginated[BillResult], error) {
	bills, err := s.billRepo.FindAllForBranch(ctx, scope.Branch(), filter)
	if err != nil {
		s.logger.Error("Failed to list bills", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list bills")
	}
	total, err := s.billRepo.CountForBranch(ctx, scope.Branch(), filter)
	if err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count bills")
	}

	results := make([]BillResult, len(bills))
	for i := range bills {
		results[i] = *toBillResult(&bills[i])
	}
	page := shared.NewPaginated(results, total, filter.Page, filter.Limit())
	return &page, nil
}

// UpdateBill patches bill header fields. Totals are derived and cannot be set
// through this path.
func (s *BillService) UpdateBill(ctx context.Context, scope shared.Scope, billID uuid.UUID, input UpdateBillInput) (*BillResult, error) {
	if input.ClientID != nil {
		if _, err := s.clientRepo.FindByIDForOrganization(ctx, scope.OrganizationID, *input.ClientID); err != nil {
			return nil, shared.NewDomainError("CLIENT_NOT_FOUND", "Client not found")
		}
	}

	bill, err := s.billRepo.MutateWithLock(ctx, scope.Branch(), billID, func(bill *billing.Bill) error {
		if input.Title != nil {
			if err := bill.Retitle(*input.Title); err != nil {
				return err
			}
		}
		if input.Description != nil {
			bill.Describe(*input.Description)
		}
		if input.Status != nil {
			if err := bill.SetStatus(billing.BillStatus(*input.Status)); err != nil {
				return err
			}
		}
		switch {
		case input.ClearClient:
			bill.AssignClient(nil)
		case input.ClientID != nil:
			bill.AssignClient(input.ClientID)
		}
		return nil
	})
	if err != nil {
		return nil, mutationError(err)
	}
	return toBillResult(bill), nil
}

// DeleteBill removes a bill and its lines
func (s *BillService) DeleteBill(ctx context.Context, scope shared.Scope, billID uuid.UUID) error {
	if _, err := s.billRepo.FindByIDForBranch(ctx, scope.Branch(), billID); err != nil {
		return s.billLookupError(err)
	}
	if err := s.billRepo.DeleteForBranch(ctx, scope.Branch(), billID); err != nil {
		s.logger.Error("Failed to delete bill", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete bill")
	}
	s.logger.Info("Bill deleted", zap.String("bill_id", billID.String()))
	return nil
}

// AddLine appends an item line to the bill and recalculates its totals in the
// same transaction. The unit price is the caller's override when given,
// otherwise the item's current catalog price; either way it is captured on the
// line and later catalog price changes do not move it.
func (s *BillService) AddLine(ctx context.Context, scope shared.Scope, billID uuid.UUID, input AddLineInput) (*BillResult, error) {
	item, err := s.itemRepo.FindByIDForBranch(ctx, scope.Branch(), input.ItemID)
	if err != nil {
		// Items of other branches resolve the same as missing ones
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Item not found")
	}
	if !item.IsActive {
		return nil, shared.NewDomainError("ITEM_INACTIVE", "Item is not active")
	}

	unitPrice := item.UnitPrice
	if input.UnitPrice != nil {
		unitPrice = *input.UnitPrice
	}

	bill, err := s.billRepo.MutateWithLock(ctx, scope.Branch(), billID, func(bill *billing.Bill) error {
		if _, err := bill.AddLine(item.ID, item.BranchID, input.Quantity, unitPrice, input.Notes); err != nil {
			return err
		}
		return s.recalculate(ctx, bill)
	})
	if err != nil {
		return nil, mutationError(err)
	}

	s.logger.Info("Bill line added",
		zap.String("bill_id", billID.String()),
		zap.String("item_id", item.ID.String()))
	return toBillResult(bill), nil
}

// UpdateLine patches an existing line and recalculates the bill's totals in
// the same transaction
func (s *BillService) UpdateLine(ctx context.Context, scope shared.Scope, billID, lineID uuid.UUID, input UpdateLineInput) (*BillResult, error) {
	bill, err := s.billRepo.MutateWithLock(ctx, scope.Branch(), billID, func(bill *billing.Bill) error {
		patch := billing.LinePatch{
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
			Notes:     input.Notes,
		}
		if _, err := bill.UpdateLine(lineID, patch); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("LINE_NOT_FOUND", "Bill line not found")
			}
			return err
		}
		return s.recalculate(ctx, bill)
	})
	if err != nil {
		return nil, mutationError(err)
	}
	return toBillResult(bill), nil
}

// RemoveLine deletes a line and recalculates the bill's totals in the same
// transaction. Removing the last line zeroes the totals.
func (s *BillService) RemoveLine(ctx context.Context, scope shared.Scope, billID, lineID uuid.UUID) (*BillResult, error) {
	bill, err := s.billRepo.MutateWithLock(ctx, scope.Branch(), billID, func(bill *billing.Bill) error {
		if err := bill.RemoveLine(lineID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError("LINE_NOT_FOUND", "Bill line not found")
			}
			return err
		}
		return s.recalculate(ctx, bill)
	})
	if err != nil {
		return nil, mutationError(err)
	}
	return toBillResult(bill), nil
}

// RecalculateBill rebuilds the bill's totals from its lines and current tax
// rates. Normally redundant; exposed for repairs after direct data changes.
func (s *BillService) RecalculateBill(ctx context.Context, scope shared.Scope, billID uuid.UUID) (*BillResult, error) {
	bill, err := s.billRepo.MutateWithLock(ctx, scope.Branch(), billID, func(bill *billing.Bill) error {
		return s.recalculate(ctx, bill)
	})
	if err != nil {
		return nil, mutationError(err)
	}
	return toBillResult(bill), nil
}

// recalculate overwrites the bill's totals from its current lines. Runs inside
// the caller's MutateWithLock transaction.
func (s *BillService) recalculate(ctx context.Context, bill *billing.Bill) error {
	itemIDs := bill.ItemIDs()
	percentages := map[uuid.UUID]decimal.Decimal{}
	if len(itemIDs) > 0 {
		var err error
		percentages, err = s.itemRepo.CurrentTaxPercentages(ctx, itemIDs)
		if err != nil {
			s.logger.Error("Failed to resolve tax percentages",
				zap.String("bill_id", bill.ID.String()),
				zap.Error(err))
			return shared.ErrRecalculationFailure
		}
	}
	bill.Recalculate(percentages)
	return nil
}

func toBillResult(bill *billing.Bill) *BillResult {
	lines := make([]BillLineResult, len(bill.Lines))
	for i := range bill.Lines {
		line := &bill.Lines[i]
		lines[i] = BillLineResult{
			ID:         line.ID,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			TotalPrice: line.TotalPrice,
			Notes:      line.Notes,
			CreatedAt:  line.CreatedAt,
			UpdatedAt:  line.UpdatedAt,
		}
	}
	return &BillResult{
		ID:          bill.ID,
		PublicID:    bill.PublicID,
		BranchID:    bill.BranchID,
		UserID:      bill.UserID,
		ClientID:    bill.ClientID,
		Title:       bill.Title,
		Description: bill.Description,
		Status:      string(bill.Status),
		Subtotal:    bill.Subtotal,
		TaxAmount:   bill.TaxAmount,
		Amount:      bill.Amount,
		Lines:       lines,
		CreatedAt:   bill.CreatedAt,
		UpdatedAt:   bill.UpdatedAt,
	}
}

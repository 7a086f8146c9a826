package billing

import (
	"strings"
	"time"

	"github.com/facturo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle status of a bill
type BillStatus string

const (
	BillStatusDraft     BillStatus = "draft"
	BillStatusIssued    BillStatus = "issued"
	BillStatusPaid      BillStatus = "paid"
	BillStatusCancelled BillStatus = "cancelled"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusDraft, BillStatusIssued, BillStatusPaid, BillStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// BillLine binds a bill to a catalog item with a quantity and the unit price
// captured at line creation. The captured price is independent of later
// catalog price changes; only an explicit line update replaces it.
type BillLine struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BillID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bill_item"`
	ItemID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_bill_item"`
	Quantity   decimal.Decimal `gorm:"type:decimal(12,4);not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Notes      string          `gorm:"size:500"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the database table name
func (BillLine) TableName() string {
	return "bill_lines"
}

func newBillLine(billID, itemID uuid.UUID, quantity, unitPrice decimal.Decimal, notes string) (*BillLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ITEM", "Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &BillLine{
		ID:         uuid.New(),
		BillID:     billID,
		ItemID:     itemID,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: quantity.Mul(unitPrice),
		Notes:      notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// LinePatch is a field-presence-aware update for a bill line. A nil field
// means "leave unchanged"; a non-nil field replaces the value.
type LinePatch struct {
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
	Notes     *string
}

func (l *BillLine) apply(patch LinePatch) error {
	if patch.Quantity != nil {
		if patch.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
		}
		l.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		if patch.UnitPrice.IsNegative() {
			return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		l.UnitPrice = *patch.UnitPrice
	}
	if patch.Notes != nil {
		l.Notes = *patch.Notes
	}
	l.TotalPrice = l.Quantity.Mul(l.UnitPrice)
	l.UpdatedAt = time.Now()
	return nil
}

// Bill is the aggregate root of the ledger. The derived fields Subtotal,
// TaxAmount and Amount are written only by Recalculate; no update path may
// set them directly.
type Bill struct {
	shared.BranchAggregateRoot
	PublicID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Title       string     `gorm:"size:200;not null"`
	Description string     `gorm:"size:1000"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ClientID    *uuid.UUID `gorm:"type:uuid;index"`
	Status      BillStatus `gorm:"size:20;not null;default:'draft'"`
	Lines       []BillLine `gorm:"foreignKey:BillID"`

	Subtotal  decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TaxAmount decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(14,2);not null"`
}

// TableName returns the database table name
func (Bill) TableName() string {
	return "bills"
}

// NewBill creates a new draft bill in a branch. The public ID is a separate
// opaque identifier for external sharing, distinct from the internal ID.
func NewBill(branchID, userID uuid.UUID, title string) (*Bill, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, shared.NewDomainError("INVALID_TITLE", "Bill title cannot be empty")
	}
	if len(title) > 200 {
		return nil, shared.NewDomainError("INVALID_TITLE", "Bill title cannot exceed 200 characters")
	}

	return &Bill{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(branchID),
		PublicID:            uuid.New(),
		Title:               title,
		UserID:              userID,
		Status:              BillStatusDraft,
		Lines:               make([]BillLine, 0),
		Subtotal:            decimal.Zero,
		TaxAmount:           decimal.Zero,
		Amount:              decimal.Zero,
	}, nil
}

// Retitle changes the bill title
func (b *Bill) Retitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Bill title cannot be empty")
	}
	b.Title = title
	b.Touch()
	return nil
}

// Describe updates the bill description
func (b *Bill) Describe(description string) {
	b.Description = description
	b.Touch()
}

// SetStatus moves the bill to the given status
func (b *Bill) SetStatus(status BillStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown bill status")
	}
	b.Status = status
	b.Touch()
	return nil
}

// AssignClient sets the optional billing counterparty; nil clears it
func (b *Bill) AssignClient(clientID *uuid.UUID) {
	b.ClientID = clientID
	b.Touch()
}

// AddLine adds a line for the given item. itemBranchID is the branch owning
// the item; it must equal the bill's branch. At most one line per item may
// exist on a bill; an item has to be split into distinct catalog entries to
// appear twice.
func (b *Bill) AddLine(itemID, itemBranchID uuid.UUID, quantity, unitPrice decimal.Decimal, notes string) (*BillLine, error) {
	if itemBranchID != b.BranchID {
		return nil, shared.ErrCrossScope
	}
	for _, line := range b.Lines {
		if line.ItemID == itemID {
			return nil, shared.ErrDuplicateLine
		}
	}

	line, err := newBillLine(b.ID, itemID, quantity, unitPrice, notes)
	if err != nil {
		return nil, err
	}

	b.Lines = append(b.Lines, *line)
	b.Touch()
	return line, nil
}

// UpdateLine applies a patch to an existing line
func (b *Bill) UpdateLine(lineID uuid.UUID, patch LinePatch) (*BillLine, error) {
	for idx := range b.Lines {
		if b.Lines[idx].ID == lineID {
			if err := b.Lines[idx].apply(patch); err != nil {
				return nil, err
			}
			b.Touch()
			return &b.Lines[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

// RemoveLine removes a line from the bill
func (b *Bill) RemoveLine(lineID uuid.UUID) error {
	for idx, line := range b.Lines {
		if line.ID == lineID {
			b.Lines = append(b.Lines[:idx], b.Lines[idx+1:]...)
			b.Touch()
			return nil
		}
	}
	return shared.ErrNotFound
}

// FindLine returns the line with the given ID, if present
func (b *Bill) FindLine(lineID uuid.UUID) (*BillLine, bool) {
	for idx := range b.Lines {
		if b.Lines[idx].ID == lineID {
			return &b.Lines[idx], true
		}
	}
	return nil, false
}

// Recalculate overwrites the derived fields from the current line set. It
// never adjusts incrementally: an empty line set yields 0.00 for all three
// fields and repeating the call changes nothing. taxPercentages maps item ID
// to the item's current tax-rate percentage; an item without an entry is
// taxed at zero. Rounding to 2 decimal places happens after summation, not
// per line, so many small lines do not compound rounding error.
func (b *Bill) Recalculate(taxPercentages map[uuid.UUID]decimal.Decimal) {
	hundred := decimal.NewFromInt(100)
	subtotal := decimal.Zero
	taxAmount := decimal.Zero

	for _, line := range b.Lines {
		lineSubtotal := line.Quantity.Mul(line.UnitPrice)
		subtotal = subtotal.Add(lineSubtotal)
		if pct, ok := taxPercentages[line.ItemID]; ok {
			taxAmount = taxAmount.Add(lineSubtotal.Mul(pct).Div(hundred))
		}
	}

	b.Subtotal = subtotal.Round(2)
	b.TaxAmount = taxAmount.Round(2)
	b.Amount = b.Subtotal.Add(b.TaxAmount).Round(2)
	b.Touch()
}

// ItemIDs returns the item IDs of all current lines
func (b *Bill) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(b.Lines))
	for i, line := range b.Lines {
		ids[i] = line.ItemID
	}
	return ids
}

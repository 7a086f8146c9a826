package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBillInput contains the input for creating a bill
type CreateBillInput struct {
	Title       string
	Description string
	ClientID    *uuid.UUID
}

// UpdateBillInput contains the fields of a bill update. Nil pointers leave the
// field untouched; derived totals are never settable.
type UpdateBillInput struct {
	Title       *string
	Description *string
	Status      *string
	ClientID    *uuid.UUID
	ClearClient bool
}

// AddLineInput contains the input for adding an item line to a bill. UnitPrice
// overrides the catalog price when set; otherwise the current catalog price is
// captured.
type AddLineInput struct {
	ItemID    uuid.UUID
	Quantity  decimal.Decimal
	UnitPrice *decimal.Decimal
	Notes     string
}

// UpdateLineInput contains the fields of a line update. Nil pointers leave the
// field untouched.
type UpdateLineInput struct {
	Quantity  *decimal.Decimal
	UnitPrice *decimal.Decimal
	Notes     *string
}

// BillLineResult is the read model of a bill line
type BillLineResult struct {
	ID         uuid.UUID       `json:"id"`
	ItemID     uuid.UUID       `json:"item_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Notes      string          `json:"notes"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// BillResult is the read model of a bill with its derived totals
type BillResult struct {
	ID          uuid.UUID        `json:"id"`
	PublicID    uuid.UUID        `json:"public_id"`
	BranchID    uuid.UUID        `json:"branch_id"`
	UserID      uuid.UUID        `json:"user_id"`
	ClientID    *uuid.UUID       `json:"client_id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	Subtotal    decimal.Decimal  `json:"subtotal"`
	TaxAmount   decimal.Decimal  `json:"tax_amount"`
	Amount      decimal.Decimal  `json:"amount"`
	Lines       []BillLineResult `json:"lines"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

package models

import "github.com/shopspring/decimal"

// Split types accepted when recording an expense.
const (
	SplitTypeEqual  = "equal"
	SplitTypeCustom = "custom"
)

// Expense is a shared cost recorded in a group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	Description string

	// Amount is the expense total.
	Amount decimal.Decimal

	// PaidBy is the implicit single payer, used only when Contributions is empty.
	PaidBy string

	// Contributions lists who funded the expense and how much.
	Contributions []Contribution

	// SplitType is SplitTypeEqual or SplitTypeCustom.
	SplitType string

	// Splits lists each member's share. When empty the amount is shared
	// equally by all current group members.
	Splits []SplitEntry

	// SpentAt is the optional Unix timestamp of the purchase (0 if unknown).
	SpentAt int64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// CreatedBy is the user ID who recorded this expense.
	CreatedBy string
}

// Contribution is one payer's portion of an expense.
type Contribution struct {
	UserID string
	Amount decimal.Decimal
}

// SplitEntry is one member's share of an expense.
type SplitEntry struct {
	UserID string
	Amount decimal.Decimal
}

// Package ledger computes group balances and settle-up suggestions.
//
// The package is pure: it never touches storage or the network and keeps no
// state between calls, so every function is safe for concurrent use on
// independent inputs.
//
// Two operations make up the engine:
//   - ComputeNetBalances folds expenses and settlements into a NetBalance
//   - Simplify turns a NetBalance into a short list of Transfers that zeroes it
//
// Amounts are decimal.Decimal with cent precision. Malformed records (unknown
// members, negative amounts, empty ids) are skipped rather than reported.
package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MemberID identifies a group member. IDs are opaque and compared exactly, so
// "Alice" and "alice" are different members.
type MemberID string

// ToMemberID converts a raw member reference (database id, JWT subject,
// request field) into a MemberID. Only surrounding whitespace is removed.
func ToMemberID(raw string) MemberID {
	return MemberID(strings.TrimSpace(raw))
}

// Contribution is one member's portion of funding an expense.
type Contribution struct {
	Payer  MemberID
	Amount decimal.Decimal
}

// Split is one member's portion of liability for an expense.
type Split struct {
	Participant MemberID
	Amount      decimal.Decimal
}

// Funding describes who paid for an expense. It is either Contributions or
// SinglePayer; a nil Funding means nobody is credited.
type Funding interface {
	funders(total decimal.Decimal) []Contribution
}

// Contributions funds an expense from an explicit list of payers.
type Contributions []Contribution

func (c Contributions) funders(decimal.Decimal) []Contribution {
	return c
}

// SinglePayer funds the whole expense amount from one member.
type SinglePayer MemberID

func (p SinglePayer) funders(total decimal.Decimal) []Contribution {
	return []Contribution{{Payer: MemberID(p), Amount: total}}
}

// NewFunding resolves stored funding fields into a Funding value: the
// contribution list when it is non-empty, otherwise the implicit payer, otherwise nil.
func NewFunding(contributions []Contribution, paidBy MemberID) Funding {
	if len(contributions) > 0 {
		return Contributions(contributions)
	}
	if paidBy != "" {
		return SinglePayer(paidBy)
	}
	return nil
}

// Expense is a shared cost. An empty Splits list means the amount is shared
// equally by every current member.
type Expense struct {
	Amount  decimal.Decimal
	Funding Funding
	Splits  []Split
}

// Settlement is a direct payment from Payer to Payee.
type Settlement struct {
	Payer  MemberID
	Payee  MemberID
	Amount decimal.Decimal
	Note   string
}

// Transfer is a suggested payment that moves From's debt to To.
type Transfer struct {
	From   MemberID
	To     MemberID
	Amount decimal.Decimal
}

// MemberBalance is one entry of a NetBalance.
type MemberBalance struct {
	Member MemberID
	// Amount is positive when the group owes the member and negative when the
	// member owes the group.
	Amount decimal.Decimal
}

// NetBalance holds one signed balance per member, in member order.
type NetBalance []MemberBalance

// Get returns the balance of id and whether id is present.
func (n NetBalance) Get(id MemberID) (decimal.Decimal, bool) {
	for _, b := range n {
		if b.Member == id {
			return b.Amount, true
		}
	}
	return decimal.Zero, false
}

// Sum returns the total of all balances. It is zero for a consistent ledger.
func (n NetBalance) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, b := range n {
		sum = sum.Add(b.Amount)
	}
	return sum
}

// Map returns the balances keyed by member.
func (n NetBalance) Map() map[MemberID]decimal.Decimal {
	m := make(map[MemberID]decimal.Decimal, len(n))
	for _, b := range n {
		m[b.Member] = m[b.Member].Add(b.Amount)
	}
	return m
}

// Rounded returns a copy with every amount rounded to cents, for display.
func (n NetBalance) Rounded() NetBalance {
	out := make(NetBalance, len(n))
	for i, b := range n {
		out[i] = MemberBalance{Member: b.Member, Amount: RoundCents(b.Amount)}
	}
	return out
}

package ledger

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Simplify suggests transfers that bring every balance in net back to zero.
//
// Balances are rounded to cents and settled members dropped. Debtors are then
// matched greedily against creditors, largest magnitudes first: each step
// moves min(|debt|, credit) and retires whichever side reaches zero. Ties keep
// input order, so the output is deterministic.
//
// At most (non-zero balances - 1) transfers are produced, never one from a
// member to themselves. An already settled net yields no transfers.
func Simplify(net NetBalance) []Transfer {
	var debtors, creditors []MemberBalance
	for _, b := range mergeDuplicates(net) {
		amount := RoundCents(b.Amount)
		if IsSettled(amount) {
			continue
		}
		if amount.IsNegative() {
			debtors = append(debtors, MemberBalance{Member: b.Member, Amount: amount})
		} else {
			creditors = append(creditors, MemberBalance{Member: b.Member, Amount: amount})
		}
	}

	// Most negative debtor first, largest creditor first.
	slices.SortStableFunc(debtors, func(a, b MemberBalance) int {
		return a.Amount.Cmp(b.Amount)
	})
	slices.SortStableFunc(creditors, func(a, b MemberBalance) int {
		return b.Amount.Cmp(a.Amount)
	})

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := &debtors[i]
		creditor := &creditors[j]

		owed := debtor.Amount.Abs()
		amount := RoundCents(decimal.Min(owed, creditor.Amount))
		if amount.LessThan(OneCent) {
			// Residual dust; retire the smaller side so the loop terminates.
			if owed.LessThan(creditor.Amount) {
				i++
			} else {
				j++
			}
			continue
		}

		transfers = append(transfers, Transfer{
			From:   debtor.Member,
			To:     creditor.Member,
			Amount: amount,
		})
		debtor.Amount = debtor.Amount.Add(amount)
		creditor.Amount = creditor.Amount.Sub(amount)

		if IsSettled(debtor.Amount) {
			i++
		}
		if IsSettled(creditor.Amount) {
			j++
		}
	}

	return transfers
}

// mergeDuplicates sums repeated members into their first position.
func mergeDuplicates(net NetBalance) NetBalance {
	out := make(NetBalance, 0, len(net))
	index := make(map[MemberID]int, len(net))
	for _, b := range net {
		if i, ok := index[b.Member]; ok {
			out[i].Amount = out[i].Amount.Add(b.Amount)
			continue
		}
		index[b.Member] = len(out)
		out = append(out, b)
	}
	return out
}

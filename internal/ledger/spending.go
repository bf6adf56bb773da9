package ledger

import "github.com/shopspring/decimal"

// SpentByMember reports how much each member paid toward expenses, using the
// same funding resolution as ComputeNetBalances. Splits and settlements do not
// affect it. Entries follow member order.
func SpentByMember(members []MemberID, expenses []Expense) NetBalance {
	spent := ComputeNetBalances(members, nil, nil)
	index := make(map[MemberID]int, len(spent))
	for i, b := range spent {
		index[b.Member] = i
	}

	for _, e := range expenses {
		if e.Funding == nil {
			continue
		}
		for _, c := range e.Funding.funders(e.Amount) {
			if c.Amount.IsNegative() {
				continue
			}
			if i, ok := index[c.Payer]; ok {
				spent[i].Amount = spent[i].Amount.Add(c.Amount)
			}
		}
	}
	return spent
}

// TotalSpent sums the amounts of all expenses with a non-negative total.
func TotalSpent(expenses []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.Amount.IsNegative() {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

package ledger

import "github.com/shopspring/decimal"

// ComputeNetBalances folds expenses and settlements, in input order, into a
// balance for every member.
//
// Algorithm:
//   - Every funder of an expense is credited with their contribution
//   - Every split participant is debited with their share; an expense without
//     splits is shared equally by all members (see EqualShares)
//   - A settlement credits its payer and debits its payee
//
// References to ids outside members are ignored, as are empty ids and
// negative amounts. The result always has exactly one entry per distinct
// member, in the order given.
func ComputeNetBalances(members []MemberID, expenses []Expense, settlements []Settlement) NetBalance {
	net := make(NetBalance, 0, len(members))
	index := make(map[MemberID]int, len(members))
	for _, id := range members {
		if id == "" {
			continue
		}
		if _, dup := index[id]; dup {
			continue
		}
		index[id] = len(net)
		net = append(net, MemberBalance{Member: id, Amount: decimal.Zero})
	}

	adjust := func(id MemberID, delta decimal.Decimal) {
		if i, ok := index[id]; ok {
			net[i].Amount = net[i].Amount.Add(delta)
		}
	}

	for _, e := range expenses {
		if e.Funding != nil {
			for _, c := range e.Funding.funders(e.Amount) {
				if c.Amount.IsNegative() {
					continue
				}
				adjust(c.Payer, c.Amount)
			}
		}

		if len(e.Splits) > 0 {
			for _, s := range e.Splits {
				if s.Amount.IsNegative() {
					continue
				}
				adjust(s.Participant, s.Amount.Neg())
			}
			continue
		}

		if e.Amount.IsNegative() || len(net) == 0 {
			continue
		}
		for i, share := range EqualShares(e.Amount, len(net)) {
			net[i].Amount = net[i].Amount.Sub(share)
		}
	}

	for _, s := range settlements {
		if s.Amount.IsNegative() {
			continue
		}
		adjust(s.Payer, s.Amount)
		adjust(s.Payee, s.Amount.Neg())
	}

	return net
}

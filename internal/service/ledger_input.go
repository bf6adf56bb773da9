package service

import (
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
)

// ledgerInput is a group's history converted for the balance engine. ids maps
// normalized member IDs back to stored user IDs.
type ledgerInput struct {
	members     []ledger.MemberID
	expenses    []ledger.Expense
	settlements []ledger.Settlement
	ids         map[ledger.MemberID]string
}

func newLedgerInput(group *models.Group, expenses []*models.Expense, settlements []*models.Settlement) *ledgerInput {
	in := &ledgerInput{
		members:     make([]ledger.MemberID, 0, len(group.Members)),
		expenses:    make([]ledger.Expense, 0, len(expenses)),
		settlements: make([]ledger.Settlement, 0, len(settlements)),
		ids:         make(map[ledger.MemberID]string, len(group.Members)),
	}

	for _, userID := range group.Members {
		id := ledger.ToMemberID(userID)
		in.members = append(in.members, id)
		in.ids[id] = userID
	}
	for _, e := range expenses {
		in.expenses = append(in.expenses, toLedgerExpense(e))
	}
	for _, s := range settlements {
		in.settlements = append(in.settlements, ledger.Settlement{
			Payer:  ledger.ToMemberID(s.FromUserID),
			Payee:  ledger.ToMemberID(s.ToUserID),
			Amount: s.Amount,
			Note:   s.Note,
		})
	}
	return in
}

func toLedgerExpense(e *models.Expense) ledger.Expense {
	var contributions []ledger.Contribution
	for _, c := range e.Contributions {
		contributions = append(contributions, ledger.Contribution{
			Payer:  ledger.ToMemberID(c.UserID),
			Amount: c.Amount,
		})
	}

	var splits []ledger.Split
	for _, sp := range e.Splits {
		splits = append(splits, ledger.Split{
			Participant: ledger.ToMemberID(sp.UserID),
			Amount:      sp.Amount,
		})
	}

	return ledger.Expense{
		Amount:  e.Amount,
		Funding: ledger.NewFunding(contributions, ledger.ToMemberID(e.PaidBy)),
		Splits:  splits,
	}
}

// userID maps an engine member back to the stored user ID.
func (in *ledgerInput) userID(id ledger.MemberID) string {
	if userID, ok := in.ids[id]; ok {
		return userID
	}
	return string(id)
}

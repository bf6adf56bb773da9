package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
)

// ledgerFile is the JSON input format:
//
//	{
//	  "members": ["alice", "bob"],
//	  "expenses": [
//	    {"amount": "30", "paidBy": "alice"},
//	    {"amount": "12", "contributions": [{"payer": "bob", "amount": "12"}],
//	     "splits": [{"participant": "alice", "amount": "12"}]}
//	  ],
//	  "settlements": [{"from": "bob", "to": "alice", "amount": "5"}]
//	}
//
// Amounts may be JSON numbers or strings. An expense without splits is
// shared equally by all members.
type ledgerFile struct {
	Members     []string         `json:"members"`
	Expenses    []fileExpense    `json:"expenses"`
	Settlements []fileSettlement `json:"settlements"`
}

type fileExpense struct {
	Description   string             `json:"description"`
	Amount        decimal.Decimal    `json:"amount"`
	PaidBy        string             `json:"paidBy"`
	Contributions []fileContribution `json:"contributions"`
	Splits        []fileSplit        `json:"splits"`
}

type fileContribution struct {
	Payer  string          `json:"payer"`
	Amount decimal.Decimal `json:"amount"`
}

type fileSplit struct {
	Participant string          `json:"participant"`
	Amount      decimal.Decimal `json:"amount"`
}

type fileSettlement struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
	Note   string          `json:"note"`
}

func parseLedgerFile(r io.Reader) (*ledgerFile, error) {
	var f ledgerFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("invalid ledger: %w", err)
	}
	if len(f.Members) == 0 {
		return nil, errors.New("invalid ledger: no members")
	}
	return &f, nil
}

// ledgerInput trims every ID with ledger.ToMemberID; case is preserved.
func (f *ledgerFile) ledgerInput() ([]ledger.MemberID, []ledger.Expense, []ledger.Settlement) {
	members := make([]ledger.MemberID, 0, len(f.Members))
	for _, m := range f.Members {
		members = append(members, ledger.ToMemberID(m))
	}

	expenses := make([]ledger.Expense, 0, len(f.Expenses))
	for _, e := range f.Expenses {
		var contributions []ledger.Contribution
		for _, c := range e.Contributions {
			contributions = append(contributions, ledger.Contribution{Payer: ledger.ToMemberID(c.Payer), Amount: c.Amount})
		}
		var splits []ledger.Split
		for _, s := range e.Splits {
			splits = append(splits, ledger.Split{Participant: ledger.ToMemberID(s.Participant), Amount: s.Amount})
		}
		expenses = append(expenses, ledger.Expense{
			Amount:  e.Amount,
			Funding: ledger.NewFunding(contributions, ledger.ToMemberID(e.PaidBy)),
			Splits:  splits,
		})
	}

	settlements := make([]ledger.Settlement, 0, len(f.Settlements))
	for _, s := range f.Settlements {
		settlements = append(settlements, ledger.Settlement{
			Payer:  ledger.ToMemberID(s.From),
			Payee:  ledger.ToMemberID(s.To),
			Amount: s.Amount,
			Note:   s.Note,
		})
	}
	return members, expenses, settlements
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// sumTolerance is how far contributions or custom splits may drift from the
// expense amount.
var sumTolerance = decimal.New(2, -2)

var (
	ErrAmountTooSmall     = errors.New("amount must be at least 0.01")
	ErrEmptySplit         = errors.New("at least one person must be included in the split")
	ErrContributionsSum   = errors.New("contributions must sum to expense amount")
	ErrSplitsSum          = errors.New("custom splits must sum to expense amount")
	ErrPayerNotMember     = errors.New("all payers must be group members")
	ErrSplitNotMember     = errors.New("all split participants must be group members")
	ErrNegativeSplit      = errors.New("split amounts must not be negative")
	ErrUnknownSplitType   = errors.New("split type must be equal or custom")
	ErrMissingCustomSplit = errors.New("custom split type requires splits")
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store storage.Store
	cache *SummaryCache
}

// NewExpenseService creates an ExpenseService. cache may be nil.
func NewExpenseService(store storage.Store, cache *SummaryCache) *ExpenseService {
	return &ExpenseService{store: store, cache: cache}
}

// CreateExpense validates and records an expense. Equal splits are resolved
// to explicit per-member amounts before storing, so later membership changes
// do not alter past expenses.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateExpense request received",
		"group_id", group.ID,
		"amount", req.Msg.Amount,
		"split_type", req.Msg.SplitType,
	)

	expense, err := buildExpense(group, userID, req.Msg)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, internalError("CreateExpense failed", err, "group_id", group.ID)
	}
	s.cache.Invalidate(group.ID)

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// ListExpenses returns a group's expenses, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		return nil, internalError("ListExpenses failed", err, "group_id", group.ID)
	}

	out := make([]*api.Expense, 0, len(expenses))
	for i := len(expenses) - 1; i >= 0; i-- {
		out = append(out, toAPIExpense(expenses[i]))
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// DeleteExpense removes an expense from the group.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	expense, err := s.store.GetExpense(ctx, req.Msg.ExpenseID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && expense.GroupID != group.ID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("expense not found"))
	}
	if err != nil {
		return nil, internalError("DeleteExpense lookup failed", err)
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		return nil, internalError("DeleteExpense failed", err, "expense_id", expense.ID)
	}
	s.cache.Invalidate(group.ID)

	slog.Info("Expense deleted", "expense_id", expense.ID, "group_id", group.ID, "user_id", userID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// buildExpense applies the write-path rules to a request.
func buildExpense(group *models.Group, callerID string, req *api.CreateExpenseRequest) (*models.Expense, error) {
	amount := req.Amount
	if amount.LessThan(ledger.OneCent) {
		return nil, ErrAmountTooSmall
	}

	splitType := req.SplitType
	switch splitType {
	case "":
		splitType = models.SplitTypeEqual
	case models.SplitTypeEqual, models.SplitTypeCustom:
	default:
		return nil, ErrUnknownSplitType
	}

	contributions, err := resolveFunding(group, callerID, amount, req)
	if err != nil {
		return nil, err
	}

	var splits []models.SplitEntry
	if splitType == models.SplitTypeCustom {
		splits, err = customSplits(group, amount, req.Splits)
	} else {
		splits, err = equalSplits(group, amount, req.SplitBetween)
	}
	if err != nil {
		return nil, err
	}

	return &models.Expense{
		GroupID:       group.ID,
		Description:   strings.TrimSpace(req.Description),
		Amount:        amount,
		PaidBy:        contributions[0].UserID,
		Contributions: contributions,
		SplitType:     splitType,
		Splits:        splits,
		SpentAt:       req.SpentAt,
		CreatedBy:     callerID,
	}, nil
}

// resolveFunding returns the explicit contributions, or a single contribution
// of the whole amount by PaidBy (defaulting to the caller).
func resolveFunding(group *models.Group, callerID string, amount decimal.Decimal, req *api.CreateExpenseRequest) ([]models.Contribution, error) {
	if len(req.Contributions) == 0 {
		payer := req.PaidBy
		if payer == "" {
			payer = callerID
		}
		if !group.HasMember(payer) {
			return nil, ErrPayerNotMember
		}
		return []models.Contribution{{UserID: payer, Amount: amount}}, nil
	}

	sum := decimal.Zero
	contributions := make([]models.Contribution, 0, len(req.Contributions))
	for _, c := range req.Contributions {
		if !group.HasMember(c.UserID) {
			return nil, ErrPayerNotMember
		}
		if c.Amount.LessThan(ledger.OneCent) {
			return nil, ErrAmountTooSmall
		}
		sum = sum.Add(c.Amount)
		contributions = append(contributions, models.Contribution{UserID: c.UserID, Amount: c.Amount})
	}
	if sum.Sub(amount).Abs().GreaterThan(sumTolerance) {
		return nil, ErrContributionsSum
	}
	return contributions, nil
}

func customSplits(group *models.Group, amount decimal.Decimal, entries []api.Split) ([]models.SplitEntry, error) {
	if len(entries) == 0 {
		return nil, ErrMissingCustomSplit
	}

	sum := decimal.Zero
	splits := make([]models.SplitEntry, 0, len(entries))
	for _, e := range entries {
		if !group.HasMember(e.UserID) {
			return nil, ErrSplitNotMember
		}
		if e.Amount.IsNegative() {
			return nil, ErrNegativeSplit
		}
		sum = sum.Add(e.Amount)
		splits = append(splits, models.SplitEntry{UserID: e.UserID, Amount: e.Amount})
	}
	if sum.Sub(amount).Abs().GreaterThan(sumTolerance) {
		return nil, ErrSplitsSum
	}
	return splits, nil
}

// equalSplits shares amount across splitBetween (non-members dropped, group
// order kept) or across every member when splitBetween is empty. The first
// participant absorbs the rounding remainder.
func equalSplits(group *models.Group, amount decimal.Decimal, splitBetween []string) ([]models.SplitEntry, error) {
	participants := group.Members
	if len(splitBetween) > 0 {
		wanted := make(map[string]bool, len(splitBetween))
		for _, id := range splitBetween {
			wanted[id] = true
		}
		participants = nil
		for _, m := range group.Members {
			if wanted[m] {
				participants = append(participants, m)
			}
		}
	}
	if len(participants) == 0 {
		return nil, ErrEmptySplit
	}

	shares := ledger.EqualShares(amount, len(participants))
	splits := make([]models.SplitEntry, len(participants))
	for i, id := range participants {
		splits[i] = models.SplitEntry{UserID: id, Amount: shares[i]}
	}
	return splits, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, paid_by, split_type, spent_at, created_at, created_by"

// CreateExpense persists a new expense with its contributions and splits.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.SplitType == "" {
		expense.SplitType = models.SplitTypeEqual
	}

	var paidBy, spentAt any
	if expense.PaidBy != "" {
		paidBy = expense.PaidBy
	}
	if expense.SpentAt != 0 {
		spentAt = expense.SpentAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		expense.ID, expense.GroupID, expense.Description, expense.Amount.String(),
		paidBy, expense.SplitType, spentAt, expense.CreatedAt, expense.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, c := range expense.Contributions {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_contributions (expense_id, position, user_id, amount) VALUES (?, ?, ?, ?)",
			expense.ID, i, c.UserID, c.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert contribution: %w", err)
		}
	}

	for i, sp := range expense.Splits {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, position, user_id, amount) VALUES (?, ?, ?, ?)",
			expense.ID, i, sp.UserID, sp.Amount.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including contributions and splits.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense, err := scanExpense(s.db.QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	byID := map[string]*models.Expense{expense.ID: expense}
	if err := s.loadExpenseEntries(ctx, "e.id = ?", expenseID, byID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListExpensesByGroup retrieves all expenses for a group in recording order.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
		byID[expense.ID] = expense
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	if len(expenses) == 0 {
		return expenses, nil
	}
	if err := s.loadExpenseEntries(ctx, "e.group_id = ?", groupID, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its entries.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("expense %s: %w", expenseID, storage.ErrNotFound)
	}
	return nil
}

// loadExpenseEntries attaches contributions and splits, in position order, to
// the expenses selected by where.
func (s *SQLiteStore) loadExpenseEntries(ctx context.Context, where, arg string, byID map[string]*models.Expense) error {
	contribRows, err := s.db.QueryContext(ctx,
		`SELECT c.expense_id, c.user_id, c.amount FROM expense_contributions c
		 JOIN expenses e ON e.id = c.expense_id
		 WHERE `+where+` ORDER BY c.expense_id, c.position`,
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get contributions: %w", err)
	}
	defer contribRows.Close()

	for contribRows.Next() {
		var expenseID string
		var c models.Contribution
		if err := contribRows.Scan(&expenseID, &c.UserID, &c.Amount); err != nil {
			return fmt.Errorf("failed to scan contribution: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Contributions = append(e.Contributions, c)
		}
	}
	if err := contribRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate contributions: %w", err)
	}

	splitRows, err := s.db.QueryContext(ctx,
		`SELECT sp.expense_id, sp.user_id, sp.amount FROM expense_splits sp
		 JOIN expenses e ON e.id = sp.expense_id
		 WHERE `+where+` ORDER BY sp.expense_id, sp.position`,
		arg,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer splitRows.Close()

	for splitRows.Next() {
		var expenseID string
		var sp models.SplitEntry
		if err := splitRows.Scan(&expenseID, &sp.UserID, &sp.Amount); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.Splits = append(e.Splits, sp)
		}
	}
	if err := splitRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}
	return nil
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	expense := &models.Expense{}
	var paidBy sql.NullString
	var spentAt sql.NullInt64
	err := row.Scan(&expense.ID, &expense.GroupID, &expense.Description, &expense.Amount,
		&paidBy, &expense.SplitType, &spentAt, &expense.CreatedAt, &expense.CreatedBy)
	if err != nil {
		return nil, err
	}
	expense.PaidBy = paidBy.String
	expense.SpentAt = spentAt.Int64
	return expense, nil
}

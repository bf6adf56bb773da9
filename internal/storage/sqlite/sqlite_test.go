package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func mustCreateUser(t *testing.T, store *SQLiteStore, email string) *models.User {
	t.Helper()
	user := models.NewUser(email, "", "hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "Alice@Example.com")

	t.Run("GetUserByEmail is case-insensitive", func(t *testing.T) {
		got, err := store.GetUserByEmail(ctx, "ALICE@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != alice.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, alice.ID)
		}
	})

	t.Run("GetUserByID returns ErrNotFound", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "missing")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup := models.NewUser("alice@example.com", "", "hash")
		if err := store.CreateUser(ctx, dup); err == nil {
			t.Error("expected error for duplicate email")
		}
	})

	t.Run("GetUsersByIDs omits unknown IDs", func(t *testing.T) {
		bob := mustCreateUser(t, store, "bob@example.com")
		users, err := store.GetUsersByIDs(ctx, []string{alice.ID, bob.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 2 {
			t.Errorf("expected 2 users, got %d", len(users))
		}
	})
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, store, "alice@example.com")
	bob := mustCreateUser(t, store, "bob@example.com")
	carol := mustCreateUser(t, store, "carol@example.com")

	group := &models.Group{Name: "Roommates", CreatedBy: alice.ID}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("CreateGroup generates fields and adds creator", func(t *testing.T) {
		if group.ID == "" || group.InviteCode == "" || group.CreatedAt == 0 {
			t.Errorf("expected generated fields, got %+v", group)
		}
		if len(group.InviteCode) != 12 {
			t.Errorf("invite code length = %d, want 12", len(group.InviteCode))
		}
		if len(group.Members) != 1 || group.Members[0] != alice.ID {
			t.Errorf("members = %v, want [%s]", group.Members, alice.ID)
		}
	})

	t.Run("members keep join order", func(t *testing.T) {
		for _, id := range []string{carol.ID, bob.ID, carol.ID} {
			if err := store.AddGroupMember(ctx, group.ID, id); err != nil {
				t.Fatalf("AddGroupMember failed: %v", err)
			}
		}
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		want := []string{alice.ID, carol.ID, bob.ID}
		if len(got.Members) != len(want) {
			t.Fatalf("members = %v, want %v", got.Members, want)
		}
		for i := range want {
			if got.Members[i] != want[i] {
				t.Errorf("member[%d] = %s, want %s", i, got.Members[i], want[i])
			}
		}
	})

	t.Run("GetGroupByInviteCode", func(t *testing.T) {
		got, err := store.GetGroupByInviteCode(ctx, group.InviteCode)
		if err != nil {
			t.Fatalf("GetGroupByInviteCode failed: %v", err)
		}
		if got.ID != group.ID {
			t.Errorf("ID mismatch: got %s, want %s", got.ID, group.ID)
		}
		if _, err := store.GetGroupByInviteCode(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListGroupsForUser", func(t *testing.T) {
		other := &models.Group{Name: "Work", CreatedBy: bob.ID}
		if err := store.CreateGroup(ctx, other); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
		groups, err := store.ListGroupsForUser(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 2 {
			t.Errorf("expected 2 groups for bob, got %d", len(groups))
		}
		groups, err = store.ListGroupsForUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if len(groups) != 1 {
			t.Errorf("expected 1 group for alice, got %d", len(groups))
		}
	})

	t.Run("AddGroupMember to missing group", func(t *testing.T) {
		err := store.AddGroupMember(ctx, "missing", bob.ID)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []string{"bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	original := &models.Expense{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      decimal.RequireFromString("33.33"),
		PaidBy:      "alice",
		Contributions: []models.Contribution{
			{UserID: "alice", Amount: decimal.RequireFromString("20")},
			{UserID: "bob", Amount: decimal.RequireFromString("13.33")},
		},
		SplitType: models.SplitTypeCustom,
		Splits: []models.SplitEntry{
			{UserID: "bob", Amount: decimal.RequireFromString("16.67")},
			{UserID: "alice", Amount: decimal.RequireFromString("16.66")},
		},
		SpentAt: 1700000000,
	}

	t.Run("CreateExpense and GetExpense round trip", func(t *testing.T) {
		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if original.ID == "" || original.CreatedAt == 0 {
			t.Fatal("expected generated ID and CreatedAt")
		}

		got, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(original.Amount) {
			t.Errorf("Amount mismatch: got %s, want %s", got.Amount, original.Amount)
		}
		if got.PaidBy != "alice" || got.SplitType != models.SplitTypeCustom || got.SpentAt != 1700000000 {
			t.Errorf("unexpected fields: %+v", got)
		}
		if len(got.Contributions) != 2 || got.Contributions[1].UserID != "bob" ||
			!got.Contributions[1].Amount.Equal(decimal.RequireFromString("13.33")) {
			t.Errorf("contributions mismatch: %+v", got.Contributions)
		}
		// Splits keep their recorded order.
		if len(got.Splits) != 2 || got.Splits[0].UserID != "bob" {
			t.Errorf("splits mismatch: %+v", got.Splits)
		}
	})

	t.Run("ListExpensesByGroup keeps recording order", func(t *testing.T) {
		second := &models.Expense{GroupID: group.ID, Amount: decimal.NewFromInt(10), CreatedAt: original.CreatedAt}
		if err := store.CreateExpense(ctx, second); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		expenses, err := store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListExpensesByGroup failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("expected 2 expenses, got %d", len(expenses))
		}
		if expenses[0].ID != original.ID || expenses[1].ID != second.ID {
			t.Errorf("unexpected order: %s, %s", expenses[0].ID, expenses[1].ID)
		}
		if len(expenses[0].Splits) != 2 || len(expenses[1].Splits) != 0 {
			t.Errorf("entries attached to wrong expense")
		}
		if expenses[1].SplitType != models.SplitTypeEqual || expenses[1].PaidBy != "" {
			t.Errorf("defaults not applied: %+v", expenses[1])
		}
	})

	t.Run("DeleteExpense", func(t *testing.T) {
		if err := store.DeleteExpense(ctx, original.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, original.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteExpense(ctx, original.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := &models.Group{Name: "Trip", CreatedBy: "alice", Members: []string{"bob"}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: "bob",
		ToUserID:   "alice",
		Amount:     decimal.RequireFromString("12.50"),
		CreatedBy:  "bob",
		Note:       "cash",
	}
	if err := store.CreateSettlement(ctx, settlement); err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	t.Run("GetSettlement", func(t *testing.T) {
		got, err := store.GetSettlement(ctx, settlement.ID)
		if err != nil {
			t.Fatalf("GetSettlement failed: %v", err)
		}
		if !got.Amount.Equal(settlement.Amount) || got.Note != "cash" || got.FromUserID != "bob" {
			t.Errorf("unexpected settlement: %+v", got)
		}
	})

	t.Run("empty note stays empty", func(t *testing.T) {
		s := &models.Settlement{GroupID: group.ID, FromUserID: "alice", ToUserID: "bob", Amount: decimal.NewFromInt(1)}
		if err := store.CreateSettlement(ctx, s); err != nil {
			t.Fatalf("CreateSettlement failed: %v", err)
		}
		list, err := store.ListSettlementsByGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("ListSettlementsByGroup failed: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("expected 2 settlements, got %d", len(list))
		}
		if list[1].Note != "" {
			t.Errorf("expected empty note, got %q", list[1].Note)
		}
	})

	t.Run("DeleteSettlement", func(t *testing.T) {
		if err := store.DeleteSettlement(ctx, settlement.ID); err != nil {
			t.Fatalf("DeleteSettlement failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, settlement.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, ""},
		{1, "?"},
		{3, "?, ?, ?"},
	}
	for _, tt := range tests {
		if got := placeholders(tt.n); got != tt.want {
			t.Errorf("placeholders(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

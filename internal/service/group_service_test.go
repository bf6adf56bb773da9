package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, 0)
	alice := env.register(t, "alice")

	resp, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{Name: " Roommates "}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if group.InviteCode == "" {
		t.Error("expected an invite code")
	}
	if len(group.Members) != 1 || group.Members[0].UserID != alice.ID || group.Members[0].DisplayName != "alice" {
		t.Errorf("members: expected only alice, got %+v", group.Members)
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
}

func TestCreateGroupRequiresName(t *testing.T) {
	env := setupTestServer(t, 0)
	alice := env.register(t, "alice")

	_, err := env.groups.CreateGroup(context.Background(), as(alice, &api.CreateGroupRequest{Name: "  "}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestJoinGroup(t *testing.T) {
	env := setupTestServer(t, 0)
	ctx := context.Background()
	alice, bob, carol := env.register(t, "alice"), env.register(t, "bob"), env.register(t, "carol")

	group := env.newGroup(t, alice, bob, carol)

	want := []string{alice.ID, bob.ID, carol.ID}
	if len(group.Members) != len(want) {
		t.Fatalf("members: expected %d, got %d", len(want), len(group.Members))
	}
	for i, id := range want {
		if group.Members[i].UserID != id {
			t.Errorf("member %d: expected %s, got %s", i, id, group.Members[i].UserID)
		}
	}

	// Joining again is a no-op.
	again, err := env.groups.JoinGroup(ctx, as(bob, &api.JoinGroupRequest{InviteCode: group.InviteCode}))
	if err != nil {
		t.Fatalf("second JoinGroup failed: %v", err)
	}
	if len(again.Msg.Group.Members) != 3 {
		t.Errorf("members after rejoin: expected 3, got %d", len(again.Msg.Group.Members))
	}

	_, err = env.groups.JoinGroup(ctx, as(bob, &api.JoinGroupRequest{InviteCode: "nope"}))
	assertCode(t, err, connect.CodeNotFound)
}

func TestGetGroupAccess(t *testing.T) {
	env := setupTestServer(t, 0)
	ctx := context.Background()
	alice, mallory := env.register(t, "alice"), env.register(t, "mallory")
	group := env.newGroup(t, alice)

	got, err := env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.Name != "Trip" {
		t.Errorf("name: expected 'Trip', got '%s'", got.Msg.Group.Name)
	}

	_, err = env.groups.GetGroup(ctx, as(mallory, &api.GetGroupRequest{GroupID: group.ID}))
	assertCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: "missing"}))
	assertCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{}))
	assertCode(t, err, connect.CodeInvalidArgument)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t, 0)
	ctx := context.Background()
	alice, bob := env.register(t, "alice"), env.register(t, "bob")

	env.newGroup(t, alice, bob)
	env.newGroup(t, alice)
	env.newGroup(t, bob)

	tests := []struct {
		user testUser
		want int
	}{
		{alice, 2},
		{bob, 2},
	}
	for _, tt := range tests {
		resp, err := env.groups.ListGroups(ctx, as(tt.user, &api.ListGroupsRequest{}))
		if err != nil {
			t.Fatalf("ListGroups failed: %v", err)
		}
		if len(resp.Msg.Groups) != tt.want {
			t.Errorf("groups for %s: expected %d, got %d", tt.user.ID, tt.want, len(resp.Msg.Groups))
		}
	}
}

func TestGetGroupSummary(t *testing.T) {
	env := setupTestServer(t, 0)
	ctx := context.Background()
	alice, bob, carol := env.register(t, "alice"), env.register(t, "bob"), env.register(t, "carol")
	group := env.newGroup(t, alice, bob, carol)

	_, err := env.expenses.CreateExpense(ctx, as(alice, &api.CreateExpenseRequest{
		GroupID:     group.ID,
		Description: "Dinner",
		Amount:      dec("30"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	summary := env.summary(t, alice, group.ID)
	assertSummaryBalances(t, summary, map[string]string{alice.ID: "20", bob.ID: "-10", carol.ID: "-10"})
	assertDebts(t, summary, []api.Debt{
		{FromUserID: bob.ID, FromName: "bob", ToUserID: alice.ID, ToName: "alice", Amount: dec("10")},
		{FromUserID: carol.ID, FromName: "carol", ToUserID: alice.ID, ToName: "alice", Amount: dec("10")},
	})
	if !summary.TotalSpent.Equal(dec("30")) {
		t.Errorf("total spent: expected 30, got %s", summary.TotalSpent)
	}
	if len(summary.Spending) != 3 || !summary.Spending[0].Amount.Equal(dec("30")) || !summary.Spending[1].Amount.IsZero() {
		t.Errorf("unexpected spending: %+v", summary.Spending)
	}

	_, err = env.settlements.CreateSettlement(ctx, as(bob, &api.CreateSettlementRequest{
		GroupID:    group.ID,
		FromUserID: bob.ID,
		ToUserID:   alice.ID,
		Amount:     dec("10"),
	}))
	if err != nil {
		t.Fatalf("CreateSettlement failed: %v", err)
	}

	summary = env.summary(t, carol, group.ID)
	assertSummaryBalances(t, summary, map[string]string{alice.ID: "10", bob.ID: "0", carol.ID: "-10"})
	assertDebts(t, summary, []api.Debt{
		{FromUserID: carol.ID, FromName: "carol", ToUserID: alice.ID, ToName: "alice", Amount: dec("10")},
	})
	if summary.ExpenseCount != 1 || summary.SettlementCount != 1 {
		t.Errorf("counts: expected 1/1, got %d/%d", summary.ExpenseCount, summary.SettlementCount)
	}
}

func TestGetGroupSummaryCacheInvalidation(t *testing.T) {
	env := setupTestServer(t, time.Minute)
	ctx := context.Background()
	alice, bob := env.register(t, "alice"), env.register(t, "bob")
	group := env.newGroup(t, alice, bob)

	if got := env.summary(t, alice, group.ID); len(got.Debts) != 0 {
		t.Fatalf("expected no debts in an empty group, got %+v", got.Debts)
	}

	resp, err := env.expenses.CreateExpense(ctx, as(bob, &api.CreateExpenseRequest{GroupID: group.ID, Amount: dec("12")}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	summary := env.summary(t, alice, group.ID)
	assertDebts(t, summary, []api.Debt{
		{FromUserID: alice.ID, FromName: "alice", ToUserID: bob.ID, ToName: "bob", Amount: dec("6")},
	})

	_, err = env.expenses.DeleteExpense(ctx, as(bob, &api.DeleteExpenseRequest{GroupID: group.ID, ExpenseID: resp.Msg.Expense.ID}))
	if err != nil {
		t.Fatalf("DeleteExpense failed: %v", err)
	}
	if got := env.summary(t, alice, group.ID); len(got.Debts) != 0 {
		t.Errorf("expected no debts after delete, got %+v", got.Debts)
	}
}

func (env *testEnv) summary(t *testing.T, u testUser, groupID string) *api.GroupSummary {
	t.Helper()
	resp, err := env.groups.GetGroupSummary(context.Background(), as(u, &api.GetGroupSummaryRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetGroupSummary failed: %v", err)
	}
	return resp.Msg.Summary
}

func assertSummaryBalances(t *testing.T, summary *api.GroupSummary, want map[string]string) {
	t.Helper()
	if len(summary.Balances) != len(want) {
		t.Fatalf("balances: expected %d, got %d", len(want), len(summary.Balances))
	}
	for _, b := range summary.Balances {
		if !b.Amount.Equal(dec(want[b.UserID])) {
			t.Errorf("balance of %s: expected %s, got %s", b.DisplayName, want[b.UserID], b.Amount)
		}
	}
}

func assertDebts(t *testing.T, summary *api.GroupSummary, want []api.Debt) {
	t.Helper()
	if len(summary.Debts) != len(want) {
		t.Fatalf("debts: expected %d, got %d (%+v)", len(want), len(summary.Debts), summary.Debts)
	}
	for i, w := range want {
		got := summary.Debts[i]
		if got.FromUserID != w.FromUserID || got.ToUserID != w.ToUserID || !got.Amount.Equal(w.Amount) {
			t.Errorf("debt %d: expected %s -> %s %s, got %s -> %s %s",
				i, w.FromName, w.ToName, w.Amount, got.FromName, got.ToName, got.Amount)
		}
		if got.FromName != w.FromName || got.ToName != w.ToName {
			t.Errorf("debt %d names: expected %s -> %s, got %s -> %s", i, w.FromName, w.ToName, got.FromName, got.ToName)
		}
	}
}

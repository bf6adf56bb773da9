package ledger

import (
	"testing"
)

func assertBalances(t *testing.T, got NetBalance, want map[MemberID]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d balances, want %d: %v", len(got), len(want), got)
	}
	for id, w := range want {
		amount, ok := got.Get(id)
		if !ok {
			t.Errorf("missing balance for %s", id)
			continue
		}
		if !amount.Equal(d(w)) {
			t.Errorf("balance[%s] = %s, want %s", id, amount, w)
		}
	}
}

func TestComputeNetBalances(t *testing.T) {
	tests := []struct {
		name        string
		members     []MemberID
		expenses    []Expense
		settlements []Settlement
		want        map[MemberID]string
	}{
		{
			name:    "single payer equal split between two",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{Amount: d("20"), Funding: Contributions{{Payer: "A", Amount: d("20")}}},
			},
			want: map[MemberID]string{"A": "10", "B": "-10"},
		},
		{
			name:    "explicit splits",
			members: []MemberID{"A", "B", "C"},
			expenses: []Expense{
				{
					Amount:  d("30"),
					Funding: Contributions{{Payer: "A", Amount: d("30")}},
					Splits: []Split{
						{Participant: "A", Amount: d("10")},
						{Participant: "B", Amount: d("10")},
						{Participant: "C", Amount: d("10")},
					},
				},
			},
			want: map[MemberID]string{"A": "20", "B": "-10", "C": "-10"},
		},
		{
			name:    "settlement cycle cancels out",
			members: []MemberID{"A", "B", "C"},
			settlements: []Settlement{
				{Payer: "A", Payee: "B", Amount: d("10")},
				{Payer: "B", Payee: "C", Amount: d("10")},
				{Payer: "C", Payee: "A", Amount: d("10")},
			},
			want: map[MemberID]string{"A": "0", "B": "0", "C": "0"},
		},
		{
			name:    "unfunded equal split gives remainder to first member",
			members: []MemberID{"A", "B", "C"},
			expenses: []Expense{
				{Amount: d("10.00")},
			},
			want: map[MemberID]string{"A": "-3.34", "B": "-3.33", "C": "-3.33"},
		},
		{
			name:    "single payer fallback",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{Amount: d("50"), Funding: SinglePayer("B"), Splits: []Split{{Participant: "A", Amount: d("50")}}},
			},
			want: map[MemberID]string{"A": "-50", "B": "50"},
		},
		{
			name:    "multiple contributors",
			members: []MemberID{"A", "B", "C"},
			expenses: []Expense{
				{
					Amount: d("90"),
					Funding: Contributions{
						{Payer: "A", Amount: d("60")},
						{Payer: "B", Amount: d("30")},
					},
				},
			},
			want: map[MemberID]string{"A": "30", "B": "0", "C": "-30"},
		},
		{
			name:    "settlement reduces debt",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{Amount: d("20"), Funding: SinglePayer("A")},
			},
			settlements: []Settlement{
				{Payer: "B", Payee: "A", Amount: d("4"), Note: "partial"},
			},
			want: map[MemberID]string{"A": "6", "B": "-6"},
		},
		{
			name:    "non-member references are ignored",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{
					Amount:  d("30"),
					Funding: Contributions{{Payer: "Gone", Amount: d("30")}},
					Splits: []Split{
						{Participant: "A", Amount: d("15")},
						{Participant: "Gone", Amount: d("15")},
					},
				},
			},
			settlements: []Settlement{
				{Payer: "Gone", Payee: "B", Amount: d("5")},
			},
			want: map[MemberID]string{"A": "-15", "B": "-5"},
		},
		{
			name:    "negative amounts are skipped",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{
					Amount:  d("10"),
					Funding: Contributions{{Payer: "A", Amount: d("-10")}},
					Splits:  []Split{{Participant: "B", Amount: d("-10")}},
				},
				{Amount: d("-8"), Funding: SinglePayer("A")},
			},
			settlements: []Settlement{
				{Payer: "A", Payee: "B", Amount: d("-3")},
			},
			want: map[MemberID]string{"A": "0", "B": "0"},
		},
		{
			name:    "mismatched contributions are used as given",
			members: []MemberID{"A", "B"},
			expenses: []Expense{
				{
					Amount:  d("10"),
					Funding: Contributions{{Payer: "A", Amount: d("12")}},
					Splits:  []Split{{Participant: "B", Amount: d("10")}},
				},
			},
			want: map[MemberID]string{"A": "12", "B": "-10"},
		},
		{
			name:    "duplicate and empty member ids collapse",
			members: []MemberID{"A", "", "B", "A"},
			expenses: []Expense{
				{Amount: d("10"), Funding: SinglePayer("A")},
			},
			want: map[MemberID]string{"A": "5", "B": "-5"},
		},
		{
			name:     "no funding credits nobody",
			members:  []MemberID{"A", "B"},
			expenses: []Expense{{Amount: d("8"), Splits: []Split{{Participant: "A", Amount: d("8")}}}},
			want:     map[MemberID]string{"A": "-8", "B": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNetBalances(tt.members, tt.expenses, tt.settlements)
			assertBalances(t, got, tt.want)
		})
	}
}

func TestComputeNetBalancesEmptyMembers(t *testing.T) {
	got := ComputeNetBalances(nil,
		[]Expense{{Amount: d("10"), Funding: SinglePayer("A")}},
		[]Settlement{{Payer: "A", Payee: "B", Amount: d("1")}},
	)
	if len(got) != 0 {
		t.Errorf("expected empty balance for empty member set, got %v", got)
	}
	if transfers := Simplify(got); len(transfers) != 0 {
		t.Errorf("expected no transfers, got %v", transfers)
	}
}

func TestComputeNetBalancesPreservesMemberOrder(t *testing.T) {
	members := []MemberID{"zoe", "adam", "mia"}
	got := ComputeNetBalances(members, nil, nil)
	for i, id := range members {
		if got[i].Member != id {
			t.Errorf("position %d = %s, want %s", i, got[i].Member, id)
		}
	}
}

func TestNewFunding(t *testing.T) {
	contribs := []Contribution{{Payer: "A", Amount: d("5")}}

	if f, ok := NewFunding(contribs, "B").(Contributions); !ok || len(f) != 1 {
		t.Errorf("expected contributions to win over payer, got %#v", NewFunding(contribs, "B"))
	}
	if f, ok := NewFunding(nil, "B").(SinglePayer); !ok || f != "B" {
		t.Errorf("expected single payer fallback, got %#v", NewFunding(nil, "B"))
	}
	if f := NewFunding(nil, ""); f != nil {
		t.Errorf("expected nil funding, got %#v", f)
	}
}

func TestNetBalanceHelpers(t *testing.T) {
	net := NetBalance{
		{Member: "A", Amount: d("10.004")},
		{Member: "B", Amount: d("-10.004")},
	}
	if !net.Sum().IsZero() {
		t.Errorf("Sum = %s, want 0", net.Sum())
	}
	rounded := net.Rounded()
	if !rounded[0].Amount.Equal(d("10")) || !rounded[1].Amount.Equal(d("-10")) {
		t.Errorf("Rounded = %v", rounded)
	}
	if !net[0].Amount.Equal(d("10.004")) {
		t.Error("Rounded must not modify the receiver")
	}
	m := net.Map()
	if !m["B"].Equal(d("-10.004")) {
		t.Errorf("Map[B] = %s", m["B"])
	}
	if _, ok := net.Get("C"); ok {
		t.Error("Get(C) should report missing")
	}
}

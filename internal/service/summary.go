package service

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// SummaryCache keeps computed group summaries until the group changes or
// the entry expires. A nil *SummaryCache caches nothing.
//
// Every Invalidate bumps the group's generation. A summary computed from a
// read that started before the bump is never stored.
type SummaryCache struct {
	entries *cache.Cache

	mu          sync.Mutex
	generations map[string]uint64
}

// NewSummaryCache returns a cache whose entries live for ttl. A non-positive
// ttl disables caching.
func NewSummaryCache(ttl time.Duration) *SummaryCache {
	if ttl <= 0 {
		return nil
	}
	return &SummaryCache{
		entries:     cache.New(ttl, 2*ttl),
		generations: make(map[string]uint64),
	}
}

// generation returns the group's current generation. Take it before reading
// the data a summary is built from.
func (c *SummaryCache) generation(groupID string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[groupID]
}

func (c *SummaryCache) get(groupID string) (*api.GroupSummary, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.entries.Get(groupID)
	if !ok {
		return nil, false
	}
	return v.(*api.GroupSummary), true
}

// set stores summary unless the group was invalidated after generation gen.
func (c *SummaryCache) set(groupID string, gen uint64, summary *api.GroupSummary) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[groupID] != gen {
		return false
	}
	c.entries.SetDefault(groupID, summary)
	return true
}

// Invalidate drops the cached summary of groupID and discards any summary
// still being computed from older data.
func (c *SummaryCache) Invalidate(groupID string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[groupID]++
	c.entries.Delete(groupID)
}

// groupSnapshot is everything the summary needs, read concurrently.
type groupSnapshot struct {
	expenses    []*models.Expense
	settlements []*models.Settlement
	names       displayNames
}

func loadSnapshot(ctx context.Context, store storage.Store, group *models.Group) (*groupSnapshot, error) {
	snap := &groupSnapshot{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.expenses, err = store.ListExpensesByGroup(ctx, group.ID)
		return err
	})
	g.Go(func() error {
		var err error
		snap.settlements, err = store.ListSettlementsByGroup(ctx, group.ID)
		return err
	})
	g.Go(func() error {
		users, err := store.GetUsersByIDs(ctx, group.Members)
		snap.names = users
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

// buildSummary runs the balance engine over a group's history. Balances are
// rounded to cents only here, after simplification has used exact values.
func buildSummary(group *models.Group, snap *groupSnapshot, m *metrics.Metrics) *api.GroupSummary {
	in := newLedgerInput(group, snap.expenses, snap.settlements)

	net := ledger.ComputeNetBalances(in.members, in.expenses, in.settlements)
	transfers := ledger.Simplify(net)
	m.ObserveSettlementPlan(len(transfers))

	summary := &api.GroupSummary{
		GroupID:         group.ID,
		Balances:        make([]api.Balance, 0, len(net)),
		Debts:           make([]api.Debt, 0, len(transfers)),
		TotalSpent:      ledger.RoundCents(ledger.TotalSpent(in.expenses)),
		ExpenseCount:    len(snap.expenses),
		SettlementCount: len(snap.settlements),
	}

	for _, b := range net.Rounded() {
		userID := in.userID(b.Member)
		summary.Balances = append(summary.Balances, api.Balance{
			UserID:      userID,
			DisplayName: snap.names.name(userID),
			Amount:      b.Amount,
		})
	}

	for _, t := range transfers {
		from, to := in.userID(t.From), in.userID(t.To)
		summary.Debts = append(summary.Debts, api.Debt{
			FromUserID: from,
			FromName:   snap.names.name(from),
			ToUserID:   to,
			ToName:     snap.names.name(to),
			Amount:     t.Amount,
		})
	}

	spent := ledger.SpentByMember(in.members, in.expenses)
	summary.Spending = make([]api.Balance, 0, len(spent))
	for _, b := range spent.Rounded() {
		userID := in.userID(b.Member)
		summary.Spending = append(summary.Spending, api.Balance{
			UserID:      userID,
			DisplayName: snap.names.name(userID),
			Amount:      b.Amount,
		})
	}

	return summary
}

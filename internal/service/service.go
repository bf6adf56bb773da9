// Package service implements the Connect RPC services on top of storage and
// the ledger engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrNotMember     = errors.New("not a member of this group")
)

// currentUser returns the authenticated caller or an Unauthenticated error.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads groupID and checks that the caller belongs to it.
func memberGroup(ctx context.Context, store storage.GroupStore, groupID string) (*models.Group, string, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, "", err
	}
	if groupID == "" {
		return nil, "", connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group_id required"))
	}

	group, err := store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, "", connect.NewError(connect.CodeNotFound, ErrGroupNotFound)
	}
	if err != nil {
		slog.Error("Failed to load group", "group_id", groupID, "error", err)
		return nil, "", connect.NewError(connect.CodeInternal, err)
	}
	if !group.HasMember(userID) {
		return nil, "", connect.NewError(connect.CodePermissionDenied, ErrNotMember)
	}
	return group, userID, nil
}

// internalError logs err and wraps it for the client.
func internalError(msg string, err error, args ...any) error {
	slog.Error(msg, append(args, "error", err)...)
	return connect.NewError(connect.CodeInternal, err)
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

// displayNames maps user IDs to display names, falling back to the ID for
// accounts that no longer exist.
type displayNames map[string]*models.User

func (n displayNames) name(userID string) string {
	if u, ok := n[userID]; ok {
		return u.Name()
	}
	return userID
}

func toAPIGroup(g *models.Group, names displayNames) *api.Group {
	members := make([]api.Member, len(g.Members))
	for i, id := range g.Members {
		members[i] = api.Member{UserID: id, DisplayName: names.name(id)}
	}
	return &api.Group{
		ID:         g.ID,
		Name:       g.Name,
		CreatedBy:  g.CreatedBy,
		InviteCode: g.InviteCode,
		Members:    members,
		CreatedAt:  g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	out := &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PaidBy:      e.PaidBy,
		SplitType:   e.SplitType,
		SpentAt:     e.SpentAt,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
	for _, c := range e.Contributions {
		out.Contributions = append(out.Contributions, api.Contribution{UserID: c.UserID, Amount: c.Amount})
	}
	out.Splits = make([]api.Split, 0, len(e.Splits))
	for _, sp := range e.Splits {
		out.Splits = append(out.Splits, api.Split{UserID: sp.UserID, Amount: sp.Amount})
	}
	return out
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Note:       s.Note,
		CreatedAt:  s.CreatedAt,
		CreatedBy:  s.CreatedBy,
	}
}

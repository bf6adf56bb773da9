package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store   storage.Store
	cache   *SummaryCache
	metrics *metrics.Metrics
}

// NewGroupService creates a new GroupService with the given storage backend.
// cache and m may be nil.
func NewGroupService(store storage.Store, cache *SummaryCache, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, cache: cache, metrics: m}
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received", "name", req.Msg.Name, "user_id", userID)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("group name required"))
	}

	group := &models.Group{Name: name, CreatedBy: userID}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		return nil, internalError("CreateGroup failed", err)
	}

	slog.Info("Group created", "group_id", group.ID)

	apiGroup, err := s.describe(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateGroupResponse{Group: apiGroup}), nil
}

// ListGroups returns the caller's groups, newest first.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, internalError("ListGroups failed", err, "user_id", userID)
	}

	out := make([]*api.Group, 0, len(groups))
	for _, g := range groups {
		apiGroup, err := s.describe(ctx, g)
		if err != nil {
			return nil, err
		}
		out = append(out, apiGroup)
	}

	slog.Info("ListGroups successful", "user_id", userID, "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// GetGroup retrieves a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	apiGroup, err := s.describe(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: apiGroup}), nil
}

// JoinGroup adds the caller to the group owning the invite code. Joining a
// group twice returns it unchanged.
func (s *GroupService) JoinGroup(ctx context.Context, req *connect.Request[api.JoinGroupRequest]) (*connect.Response[api.JoinGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	code := strings.ToLower(strings.TrimSpace(req.Msg.InviteCode))
	if code == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invite code required"))
	}

	group, err := s.store.GetGroupByInviteCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("invalid invite code"))
	}
	if err != nil {
		return nil, internalError("JoinGroup lookup failed", err)
	}

	if !group.HasMember(userID) {
		if err := s.store.AddGroupMember(ctx, group.ID, userID); err != nil {
			return nil, internalError("JoinGroup failed", err, "group_id", group.ID)
		}
		// A new member changes every equal split over the whole group.
		s.cache.Invalidate(group.ID)

		if group, err = s.store.GetGroup(ctx, group.ID); err != nil {
			return nil, internalError("Failed to reload group", err)
		}
		slog.Info("User joined group", "group_id", group.ID, "user_id", userID)
	}

	apiGroup, err := s.describe(ctx, group)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.JoinGroupResponse{Group: apiGroup}), nil
}

// GetGroupSummary computes balances, the simplified settlement plan and
// per-member spending for a group.
func (s *GroupService) GetGroupSummary(ctx context.Context, req *connect.Request[api.GetGroupSummaryRequest]) (*connect.Response[api.GetGroupSummaryResponse], error) {
	// Taken before any read, including the member list.
	gen := s.cache.generation(req.Msg.GroupID)

	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	if cached, ok := s.cache.get(group.ID); ok {
		slog.Debug("GetGroupSummary cache hit", "group_id", group.ID)
		return connect.NewResponse(&api.GetGroupSummaryResponse{Summary: cached}), nil
	}

	snap, err := loadSnapshot(ctx, s.store, group)
	if err != nil {
		return nil, internalError("GetGroupSummary failed", err, "group_id", group.ID)
	}

	summary := buildSummary(group, snap, s.metrics)
	if s.cache != nil && !s.cache.set(group.ID, gen, summary) {
		slog.Debug("GetGroupSummary result not cached, group changed during read", "group_id", group.ID)
	}

	slog.Info("GetGroupSummary successful",
		"group_id", group.ID,
		"expenses_count", summary.ExpenseCount,
		"settlements_count", summary.SettlementCount,
		"debts_count", len(summary.Debts),
	)
	return connect.NewResponse(&api.GetGroupSummaryResponse{Summary: summary}), nil
}

// describe resolves member display names for the wire representation.
func (s *GroupService) describe(ctx context.Context, group *models.Group) (*api.Group, error) {
	users, err := s.store.GetUsersByIDs(ctx, group.Members)
	if err != nil {
		return nil, internalError("Failed to load group members", err, "group_id", group.ID)
	}
	return toAPIGroup(group, users), nil
}

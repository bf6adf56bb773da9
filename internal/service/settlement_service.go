package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
)

var (
	ErrSelfSettlement         = errors.New("from and to users must differ")
	ErrSettlementParticipants = errors.New("both users must be group members")
)

// SettlementService implements the Connect SettlementService.
type SettlementService struct {
	store storage.Store
	cache *SummaryCache
}

// NewSettlementService creates a SettlementService. cache may be nil.
func NewSettlementService(store storage.Store, cache *SummaryCache) *SettlementService {
	return &SettlementService{store: store, cache: cache}
}

// CreateSettlement records a direct payment between two members.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	group, userID, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateSettlement request received",
		"group_id", group.ID,
		"from", req.Msg.FromUserID,
		"to", req.Msg.ToUserID,
		"amount", req.Msg.Amount,
	)

	if req.Msg.Amount.LessThan(ledger.OneCent) {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrAmountTooSmall)
	}
	if req.Msg.FromUserID == req.Msg.ToUserID {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrSelfSettlement)
	}
	if !group.HasMember(req.Msg.FromUserID) || !group.HasMember(req.Msg.ToUserID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, ErrSettlementParticipants)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: req.Msg.FromUserID,
		ToUserID:   req.Msg.ToUserID,
		Amount:     req.Msg.Amount,
		Note:       strings.TrimSpace(req.Msg.Note),
		CreatedBy:  userID,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, internalError("CreateSettlement failed", err, "group_id", group.ID)
	}
	s.cache.Invalidate(group.ID)

	slog.Info("Settlement created", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// ListSettlements returns a group's settlements, newest first.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		return nil, internalError("ListSettlements failed", err, "group_id", group.ID)
	}

	out := make([]*api.Settlement, 0, len(settlements))
	for i := len(settlements) - 1; i >= 0; i-- {
		out = append(out, toAPISettlement(settlements[i]))
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a settlement from the group.
func (s *SettlementService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	group, _, err := memberGroup(ctx, s.store, req.Msg.GroupID)
	if err != nil {
		return nil, err
	}

	settlement, err := s.store.GetSettlement(ctx, req.Msg.SettlementID)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && settlement.GroupID != group.ID) {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("settlement not found"))
	}
	if err != nil {
		return nil, internalError("DeleteSettlement lookup failed", err)
	}

	if err := s.store.DeleteSettlement(ctx, settlement.ID); err != nil {
		return nil, internalError("DeleteSettlement failed", err, "settlement_id", settlement.ID)
	}
	s.cache.Invalidate(group.ID)

	slog.Info("Settlement deleted", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

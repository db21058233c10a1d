package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/internal/middleware"
	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

// Ensure AccountService implements the handler interface
var _ apiconnect.AccountServiceHandler = (*AccountService)(nil)

// AccountService implements the Connect AccountService.
type AccountService struct {
	ledger
}

// NewAccountService creates a new AccountService with the given storage backend.
func NewAccountService(store storage.Store) *AccountService {
	return &AccountService{ledger{store: store}}
}

// RegisterAccount records the caller, or refreshes its display name.
func (s *AccountService) RegisterAccount(ctx context.Context, req *connect.Request[api.RegisterAccountRequest]) (*connect.Response[api.RegisterAccountResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RegisterAccount request received", "account_id", caller)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		name = middleware.GetAccountName(ctx)
	}
	if name == "" {
		return nil, invalidArgument("name: %w", errEmptyField)
	}

	if err := s.store.UpsertAccount(ctx, &models.Account{ID: caller, Name: name}); err != nil {
		slog.Error("RegisterAccount failed", "account_id", caller, "error", err)
		return nil, toConnectError(err)
	}
	account, err := s.store.GetAccount(ctx, caller)
	if err != nil {
		slog.Error("RegisterAccount failed", "account_id", caller, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Account registered", "account_id", account.ID, "name", account.Name)

	return connect.NewResponse(&api.RegisterAccountResponse{
		Account: toAPIAccount(account),
	}), nil
}

// GetAccount returns an account and the accounts linked to it.
func (s *AccountService) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	accountID := req.Msg.AccountID
	if accountID == "" {
		accountID = caller
	}
	slog.Info("GetAccount request received", "account_id", accountID)

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		slog.Error("GetAccount failed", "account_id", accountID, "error", err)
		return nil, toConnectError(err)
	}

	linked, err := s.store.ListLinked(ctx, account.ID)
	if err != nil {
		slog.Error("GetAccount failed", "account_id", accountID, "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.GetAccountResponse{
		Account: toAPIAccount(account),
		Linked:  make([]api.Account, 0, len(linked)),
	}
	for i := range linked {
		resp.Linked = append(resp.Linked, *toAPIAccount(&linked[i]))
	}
	return connect.NewResponse(resp), nil
}

// ApproveLink makes the caller the master of the requested child account.
// The child's spending is then booked to the caller's household. When a trip
// is given the child also joins it.
func (s *AccountService) ApproveLink(ctx context.Context, req *connect.Request[api.ApproveLinkRequest]) (*connect.Response[api.ApproveLinkResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	childID := strings.TrimSpace(req.Msg.ChildID)
	slog.Info("ApproveLink request received",
		"master_id", caller,
		"child_id", childID,
		"trip_id", req.Msg.TripID,
	)

	if childID == "" {
		return nil, invalidArgument("child_id: %w", errEmptyField)
	}
	if err := s.ensureAccount(ctx, caller); err != nil {
		return nil, toConnectError(err)
	}

	// Check the trip before linking so a bad trip leaves nothing half done
	if req.Msg.TripID != "" {
		if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
			return nil, err
		}
	}

	if err := s.store.LinkAccount(ctx, childID, caller); err != nil {
		slog.Error("ApproveLink failed", "master_id", caller, "child_id", childID, "error", err)
		return nil, toConnectError(err)
	}

	if req.Msg.TripID != "" {
		if err := s.store.AddTripMember(ctx, req.Msg.TripID, childID); err != nil {
			slog.Error("ApproveLink failed to add child to trip", "trip_id", req.Msg.TripID, "error", err)
			return nil, toConnectError(err)
		}
	}

	master, err := s.store.GetAccount(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}
	child, err := s.store.GetAccount(ctx, childID)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Accounts linked", "master_id", master.ID, "child_id", child.ID)

	return connect.NewResponse(&api.ApproveLinkResponse{
		Master: toAPIAccount(master),
		Child:  toAPIAccount(child),
	}), nil
}

// Package service implements the Splitopus Connect RPC services on top of a
// storage.Store and the calculator engine.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/calculator"
	"github.com/mmynk/splitopus/internal/middleware"
	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
)

var (
	errNoCaller   = errors.New("caller identity missing")
	errNotMember  = errors.New("caller is not a member of this trip")
	errBadAmount  = errors.New("amount must be positive")
	errEmptyField = errors.New("required field is empty")
)

// ledger holds what every service needs: the store and the trip loader.
type ledger struct {
	store storage.Store
}

// snapshot is one consistent read of a trip plus the link relations used to
// interpret it.
type snapshot struct {
	trip  *models.Trip
	links calculator.LinkMap
}

func (s snapshot) masters() []string {
	return calculator.Masters(s.trip.Members, s.links)
}

func (s snapshot) masterOf(accountID string) string {
	return calculator.ResolveMaster(accountID, s.links)
}

// callerID returns the authenticated account or an Unauthenticated error.
func callerID(ctx context.Context) (string, error) {
	id := middleware.GetAccountID(ctx)
	if id == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNoCaller)
	}
	return id, nil
}

// toConnectError maps storage and engine errors onto Connect codes.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrInvalidLink),
		errors.Is(err, calculator.ErrNoParticipants),
		errors.Is(err, calculator.ErrSplitCount),
		errors.Is(err, calculator.ErrSplitMismatch):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("%w, got %s", errBadAmount, amount))
	}
	return nil
}

// ensureAccount records the caller with the display name from its identity,
// so names are known before the caller appears in a trip.
func (l *ledger) ensureAccount(ctx context.Context, accountID string) error {
	name := middleware.GetAccountName(ctx)
	if name == "" {
		if _, err := l.store.GetAccount(ctx, accountID); err == nil {
			return nil
		}
		name = accountID
	}
	return l.store.UpsertAccount(ctx, &models.Account{ID: accountID, Name: name})
}

// loadTrip reads a trip and the link relations, and checks that the caller
// takes part in it.
func (l *ledger) loadTrip(ctx context.Context, tripID, caller string) (snapshot, error) {
	if tripID == "" {
		return snapshot{}, invalidArgument("trip_id: %w", errEmptyField)
	}

	trip, err := l.store.GetTrip(ctx, tripID)
	if err != nil {
		return snapshot{}, toConnectError(err)
	}
	if !trip.HasMember(caller) {
		return snapshot{}, connect.NewError(connect.CodePermissionDenied, errNotMember)
	}

	links, err := l.store.LinkMap(ctx)
	if err != nil {
		return snapshot{}, toConnectError(err)
	}
	return snapshot{trip: trip, links: links}, nil
}

// accountNames looks up display names, falling back to the ID for accounts
// the store does not know.
func (l *ledger) accountNames(ctx context.Context, ids ...string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		account, err := l.store.GetAccount(ctx, id)
		switch {
		case err == nil:
			names[id] = account.Name
		case errors.Is(err, storage.ErrNotFound):
			names[id] = id
		default:
			return nil, err
		}
	}
	return names, nil
}

// householdNames returns the "Master + Child" name of every master,
// naming only linked accounts that are trip members.
func (l *ledger) householdNames(ctx context.Context, snap snapshot, masters []string) (map[string]string, error) {
	names := make(map[string]string, len(masters))
	for _, m := range masters {
		name, err := l.store.LinkedNames(ctx, m, snap.trip.Members)
		if err != nil {
			return nil, err
		}
		names[m] = name
	}
	return names, nil
}

// buildTrip converts a trip snapshot into its API shape.
func (l *ledger) buildTrip(ctx context.Context, snap snapshot) (*api.Trip, error) {
	names, err := l.accountNames(ctx, snap.trip.Members...)
	if err != nil {
		return nil, err
	}

	t := snap.trip
	out := &api.Trip{
		ID:        t.ID,
		Name:      t.Name,
		Code:      t.Code,
		Currency:  t.Currency,
		Rate:      t.Rate,
		CreatorID: t.CreatorID,
		Members:   make([]api.Member, 0, len(t.Members)),
		Notes:     make([]api.Note, 0, len(t.Notes)),
		CreatedAt: t.CreatedAt,
	}
	for _, id := range t.Members {
		out.Members = append(out.Members, api.Member{
			AccountID: id,
			Name:      names[id],
			MasterID:  snap.masterOf(id),
		})
	}
	for _, n := range t.Notes {
		out.Notes = append(out.Notes, toAPINote(n))
	}
	return out, nil
}

// buildExpenses converts expenses, resolving payer names.
func (l *ledger) buildExpenses(ctx context.Context, expenses []models.Expense) ([]api.Expense, error) {
	payers := make([]string, 0, len(expenses))
	for _, e := range expenses {
		payers = append(payers, e.PayerID)
	}
	names, err := l.accountNames(ctx, payers...)
	if err != nil {
		return nil, err
	}

	out := make([]api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toAPIExpense(e, names[e.PayerID]))
	}
	return out, nil
}

// commitExpense persists e and returns its API shape.
func (l *ledger) commitExpense(ctx context.Context, e *models.Expense) (*api.Expense, error) {
	if err := l.store.AddExpense(ctx, e); err != nil {
		return nil, err
	}
	slog.Info("Expense recorded",
		"trip_id", e.TripID,
		"expense_id", e.ID,
		"payer_id", e.PayerID,
		"amount", e.Amount.String(),
		"category", e.Category,
	)

	out, err := l.buildExpenses(ctx, []models.Expense{*e})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

func toAPIAccount(a *models.Account) *api.Account {
	return &api.Account{
		ID:        a.ID,
		Name:      a.Name,
		LinkedTo:  a.LinkedTo,
		CreatedAt: a.CreatedAt,
	}
}

func toAPINote(n models.Note) api.Note {
	return api.Note{
		ID:         n.ID,
		AuthorName: n.AuthorName,
		Text:       n.Text,
		CreatedAt:  n.CreatedAt,
	}
}

func toAPIExpense(e models.Expense, payerName string) api.Expense {
	split := make(map[string]decimal.Decimal, len(e.Split))
	for id, share := range e.Split {
		split[id] = share
	}
	return api.Expense{
		ID:          e.ID,
		TripID:      e.TripID,
		PayerID:     e.PayerID,
		PayerName:   payerName,
		Amount:      e.Amount,
		Description: e.Description,
		Category:    string(e.Category),
		Split:       split,
		CreatedAt:   e.CreatedAt,
	}
}

func convert(amount, rate decimal.Decimal) *decimal.Decimal {
	converted, ok := calculator.ConvertForDisplay(amount, rate)
	if !ok {
		return nil
	}
	converted = converted.Round(2)
	return &converted
}

// sortedKeys returns the keys of m in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

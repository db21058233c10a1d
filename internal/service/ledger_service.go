package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitopus/internal/calculator"
	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

// Ensure LedgerService implements the handler interface
var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

const (
	repaymentDescription = "Repayment"
	treatDescription     = "Treat"
)

// LedgerService implements the Connect LedgerService: expenses, repayments
// and the derived balance views.
type LedgerService struct {
	ledger

	// pick returns a number in [0, n). Replaced in tests.
	pick func(n int) int
}

// NewLedgerService creates a new LedgerService with the given storage backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{
		ledger: ledger{store: store},
		pick:   rand.IntN,
	}
}

// AddExpense records an expense against the trip's current membership.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("AddExpense request received",
		"trip_id", msg.TripID,
		"amount", msg.Amount.String(),
		"category", msg.Category,
		"split_entries", len(msg.Split),
	)

	snap, err := s.loadTrip(ctx, msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(msg.Amount); err != nil {
		return nil, err
	}

	payer := msg.PayerID
	if payer == "" {
		payer = caller
	}
	if !snap.trip.HasMember(payer) {
		return nil, invalidArgument("payer %q is not a member of this trip", payer)
	}

	category := models.ParseCategory(msg.Category)
	split, err := s.resolveSplit(snap, payer, msg, category)
	if err != nil {
		slog.Warn("AddExpense rejected", "trip_id", msg.TripID, "error", err)
		return nil, err
	}

	expense := &models.Expense{
		TripID:      msg.TripID,
		PayerID:     payer,
		Amount:      msg.Amount,
		Description: strings.TrimSpace(msg.Description),
		Category:    category,
		Split:       split,
	}
	out, err := s.commitExpense(ctx, expense)
	if err != nil {
		slog.Error("AddExpense failed", "trip_id", msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.AddExpenseResponse{Expense: out}), nil
}

// resolveSplit validates an explicit split, or divides the amount equally
// between the requested participants' households. A repayment is held to the
// same rules as RecordRepayment.
func (s *LedgerService) resolveSplit(snap snapshot, payer string, msg *api.AddExpenseRequest, category models.Category) (models.SplitMap, error) {
	if category.IsRepayment() {
		return s.repaymentSplit(snap, payer, msg)
	}

	if len(msg.Split) == 0 {
		masters := snap.masters()
		if len(msg.ParticipantIDs) > 0 {
			seen := make(map[string]bool, len(msg.ParticipantIDs))
			masters = masters[:0:0]
			for _, id := range msg.ParticipantIDs {
				if !snap.trip.HasMember(id) {
					return nil, invalidArgument("participant %q is not a member of this trip", id)
				}
				m := snap.masterOf(id)
				if !seen[m] {
					seen[m] = true
					masters = append(masters, m)
				}
			}
		}
		split, err := calculator.EqualSplit(msg.Amount, masters)
		if err != nil {
			return nil, toConnectError(err)
		}
		return split, nil
	}

	split := make(models.SplitMap, len(msg.Split))
	for _, id := range sortedKeys(msg.Split) {
		share := msg.Split[id]
		if !snap.trip.HasMember(id) {
			return nil, invalidArgument("split entry %q is not a member of this trip", id)
		}
		if !share.IsPositive() {
			return nil, invalidArgument("share of %q must be positive, got %s", id, share)
		}
		split[id] = share
	}
	if err := calculator.CheckSplitTotal(msg.Amount, split.Sum()); err != nil {
		return nil, toConnectError(err)
	}
	return split, nil
}

// repaymentSplit books the whole amount to the recipient's household.
func (s *LedgerService) repaymentSplit(snap snapshot, payer string, msg *api.AddExpenseRequest) (models.SplitMap, error) {
	if len(msg.Split) != 1 {
		return nil, invalidArgument("a repayment needs exactly one recipient, got %d", len(msg.Split))
	}
	recipient := sortedKeys(msg.Split)[0]
	to, err := s.counterparty(snap, payer, recipient)
	if err != nil {
		return nil, err
	}
	if share := msg.Split[recipient]; !share.Equal(msg.Amount) {
		return nil, invalidArgument("repayment share %s must equal the amount %s", share, msg.Amount)
	}
	return models.SplitMap{to: msg.Amount}, nil
}

// DeleteExpense removes one expense from the trip.
func (s *LedgerService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, req.Msg.TripID, req.Msg.ExpenseID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "trip_id", req.Msg.TripID, "expense_id", req.Msg.ExpenseID)

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses returns the trip's expenses, newest first.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "trip_id", req.Msg.TripID, "limit", req.Msg.Limit)

	if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpenses(ctx, req.Msg.TripID, req.Msg.Limit)
	if err != nil {
		slog.Error("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	out, err := s.buildExpenses(ctx, expenses)
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("ListExpenses successful", "count", len(out))

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// RecordRepayment books money the caller handed to another household.
func (s *LedgerService) RecordRepayment(ctx context.Context, req *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordRepayment request received",
		"trip_id", req.Msg.TripID,
		"to_id", req.Msg.ToID,
		"amount", req.Msg.Amount.String(),
	)

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(req.Msg.Amount); err != nil {
		return nil, err
	}
	to, err := s.counterparty(snap, caller, req.Msg.ToID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		TripID:      req.Msg.TripID,
		PayerID:     caller,
		Amount:      req.Msg.Amount,
		Description: repaymentDescription,
		Category:    models.CategoryRepayment,
		Split:       models.SplitMap{to: req.Msg.Amount},
	}
	out, err := s.commitExpense(ctx, expense)
	if err != nil {
		slog.Error("RecordRepayment failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecordRepaymentResponse{Expense: out}), nil
}

// counterparty resolves toID to a household other than the caller's.
func (s *LedgerService) counterparty(snap snapshot, caller, toID string) (string, error) {
	if toID == "" {
		return "", invalidArgument("to_id: %w", errEmptyField)
	}
	if !snap.trip.HasMember(toID) {
		return "", invalidArgument("recipient %q is not a member of this trip", toID)
	}
	to := snap.masterOf(toID)
	if to == snap.masterOf(caller) {
		return "", invalidArgument("cannot repay your own household")
	}
	return to, nil
}

// GetRepaymentHint returns what the caller's household owes the other one
// under the current settlement plan.
func (s *LedgerService) GetRepaymentHint(ctx context.Context, req *connect.Request[api.GetRepaymentHintRequest]) (*connect.Response[api.GetRepaymentHintResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetRepaymentHint request received", "trip_id", req.Msg.TripID, "to_id", req.Msg.ToID)

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	to, err := s.counterparty(snap, caller, req.Msg.ToID)
	if err != nil {
		return nil, err
	}

	sheet := calculator.ComputeBalances(snap.trip, snap.links)
	transfers := calculator.Simplify(sheet.Balances)
	owed := calculator.OwedBetween(transfers, snap.masterOf(caller), to)

	return connect.NewResponse(&api.GetRepaymentHintResponse{Owed: owed}), nil
}

// SpinRoulette picks the household that pays the next round.
func (s *LedgerService) SpinRoulette(ctx context.Context, req *connect.Request[api.SpinRouletteRequest]) (*connect.Response[api.SpinRouletteResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SpinRoulette request received", "trip_id", req.Msg.TripID)

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}

	masters := snap.masters()
	winner := masters[s.pick(len(masters))]
	names, err := s.householdNames(ctx, snap, []string{winner})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Roulette spun", "trip_id", req.Msg.TripID, "master_id", winner)

	return connect.NewResponse(&api.SpinRouletteResponse{
		MasterID: winner,
		Name:     names[winner],
	}), nil
}

// RecordTreat books an amount the caller's household paid for everyone.
// The household carries the whole share, so nobody owes anything for it.
func (s *LedgerService) RecordTreat(ctx context.Context, req *connect.Request[api.RecordTreatRequest]) (*connect.Response[api.RecordTreatResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordTreat request received", "trip_id", req.Msg.TripID, "amount", req.Msg.Amount.String())

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	if err := requirePositive(req.Msg.Amount); err != nil {
		return nil, err
	}

	description := strings.TrimSpace(req.Msg.Description)
	if description == "" {
		description = treatDescription
	}
	expense := &models.Expense{
		TripID:      req.Msg.TripID,
		PayerID:     caller,
		Amount:      req.Msg.Amount,
		Description: description,
		Category:    models.CategoryFun,
		Split:       models.SplitMap{snap.masterOf(caller): req.Msg.Amount},
	}
	out, err := s.commitExpense(ctx, expense)
	if err != nil {
		slog.Error("RecordTreat failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.RecordTreatResponse{Expense: out}), nil
}

// GetBalances returns every household's position and the transfers that
// settle the trip.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetBalances request received", "trip_id", req.Msg.TripID)

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}

	sheet := calculator.ComputeBalances(snap.trip, snap.links)
	transfers := calculator.Simplify(sheet.Balances)

	names, err := s.householdNames(ctx, snap, sortedKeys(sheet.Balances))
	if err != nil {
		return nil, toConnectError(err)
	}

	rate := snap.trip.Rate
	lines := make([]api.BalanceLine, 0, len(sheet.Balances))
	for id, bal := range sheet.Balances {
		lines = append(lines, api.BalanceLine{
			MasterID:  id,
			Name:      names[id],
			Balance:   bal,
			TotalPaid: sheet.TotalPaid[id],
			Converted: convert(bal, rate),
		})
	}
	sort.Slice(lines, func(i, j int) bool {
		if c := lines[i].Balance.Cmp(lines[j].Balance); c != 0 {
			return c > 0
		}
		return lines[i].MasterID < lines[j].MasterID
	})

	plan := make([]api.Transfer, 0, len(transfers))
	for _, t := range transfers {
		plan = append(plan, api.Transfer{
			FromID:    t.From,
			FromName:  names[t.From],
			ToID:      t.To,
			ToName:    names[t.To],
			Amount:    t.Amount,
			Converted: convert(t.Amount, rate),
		})
	}

	slog.Info("GetBalances successful",
		"trip_id", req.Msg.TripID,
		"households", len(lines),
		"transfers", len(plan),
	)

	return connect.NewResponse(&api.GetBalancesResponse{
		Currency:   snap.trip.Currency,
		Rate:       rate,
		TotalSpent: sheet.TotalSpent,
		Balances:   lines,
		Transfers:  plan,
		Settled:    calculator.IsSettled(sheet.Balances),
	}), nil
}

// GetMyStats returns the caller's household share of the trip.
func (s *LedgerService) GetMyStats(ctx context.Context, req *connect.Request[api.GetMyStatsRequest]) (*connect.Response[api.GetMyStatsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetMyStats request received", "trip_id", req.Msg.TripID)

	snap, err := s.loadTrip(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}

	stats := calculator.MyStats(snap.trip, caller, snap.links)

	var counterparties []string
	for _, ev := range append(stats.Repaid, stats.Received...) {
		counterparties = append(counterparties, ev.Counterparty)
	}
	names, err := s.householdNames(ctx, snap, counterparties)
	if err != nil {
		return nil, toConnectError(err)
	}

	byCategory := make(map[string]decimal.Decimal, len(stats.ByCategory))
	for cat, amount := range stats.ByCategory {
		byCategory[string(cat)] = amount
	}

	return connect.NewResponse(&api.GetMyStatsResponse{
		TotalShare: stats.TotalShare,
		ByCategory: byCategory,
		Repaid:     toAPIRepayments(stats.Repaid, names),
		Received:   toAPIRepayments(stats.Received, names),
	}), nil
}

func toAPIRepayments(events []calculator.RepaymentEvent, names map[string]string) []api.RepaymentEvent {
	out := make([]api.RepaymentEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, api.RepaymentEvent{
			CounterpartyID:   ev.Counterparty,
			CounterpartyName: names[ev.Counterparty],
			Amount:           ev.Amount,
			CreatedAt:        ev.CreatedAt,
		})
	}
	return out
}

package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/pkg/api"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got, msgAndArgs)
}

func (e *testEnv) addExpense(t *testing.T, caller string, req *api.AddExpenseRequest) *api.Expense {
	t.Helper()
	resp, err := e.ledger.AddExpense(context.Background(), as(caller, req))
	require.NoError(t, err, "AddExpense failed")
	return resp.Msg.Expense
}

func (e *testEnv) balances(t *testing.T, caller, tripID string) *api.GetBalancesResponse {
	t.Helper()
	resp, err := e.ledger.GetBalances(context.Background(), as(caller, &api.GetBalancesRequest{TripID: tripID}))
	require.NoError(t, err, "GetBalances failed")
	return resp.Msg
}

func TestAddExpense_EqualSplitAcrossHouseholds(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob", "cat")

	e := env.addExpense(t, "ann", &api.AddExpenseRequest{
		TripID:      trip.ID,
		Amount:      dec("100"),
		Description: "Dinner",
		Category:    "food",
	})

	assert.Equal(t, "FOOD", e.Category)
	assert.Equal(t, "Ann", e.PayerName)
	require.Len(t, e.Split, 3)
	assertDec(t, "33.34", e.Split["ann"])
	assertDec(t, "33.33", e.Split["bob"])
	assertDec(t, "33.33", e.Split["cat"])
}

func TestAddExpense_Participants(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob", "cat")
	env.link(t, "ann", "kid", trip.ID)

	// The kid resolves to ann's household, so ann and bob share the bill
	e := env.addExpense(t, "bob", &api.AddExpenseRequest{
		TripID:         trip.ID,
		Amount:         dec("30"),
		Category:       "TRANSPORT",
		ParticipantIDs: []string{"kid", "bob", "ann"},
	})
	require.Len(t, e.Split, 2)
	assertDec(t, "15", e.Split["ann"])
	assertDec(t, "15", e.Split["bob"])
}

func TestAddExpense_UnknownCategoryIsOther(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")

	e := env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Category: "spa"})
	assert.Equal(t, "OTHER", e.Category)
}

func TestAddExpense_Validation(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")

	tests := []struct {
		name string
		req  *api.AddExpenseRequest
		want connect.Code
	}{
		{
			name: "zero amount",
			req:  &api.AddExpenseRequest{TripID: trip.ID, Amount: decimal.Zero},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "payer outside trip",
			req:  &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), PayerID: "eve"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "split entry outside trip",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Split: map[string]decimal.Decimal{
				"ann": dec("5"), "eve": dec("5"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "split off by more than tolerance",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Split: map[string]decimal.Decimal{
				"ann": dec("4"), "bob": dec("4"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "negative share",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Split: map[string]decimal.Decimal{
				"ann": dec("15"), "bob": dec("-5"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "repayment with two recipients",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Category: "REPAYMENT", Split: map[string]decimal.Decimal{
				"ann": dec("5"), "bob": dec("5"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "repayment without recipient",
			req:  &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Category: "REPAYMENT"},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "repayment to own household",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("20"), Category: "REPAYMENT", Split: map[string]decimal.Decimal{
				"bob": dec("20"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "repayment share differs from amount",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("20"), Category: "REPAYMENT", Split: map[string]decimal.Decimal{
				"ann": dec("19.01"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "repayment to non-member",
			req: &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("20"), Category: "REPAYMENT", Split: map[string]decimal.Decimal{
				"eve": dec("20"),
			}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "participant outside trip",
			req:  &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), ParticipantIDs: []string{"eve"}},
			want: connect.CodeInvalidArgument,
		},
		{
			name: "unknown trip",
			req:  &api.AddExpenseRequest{TripID: "missing", Amount: dec("10")},
			want: connect.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.AddExpense(context.Background(), as("bob", tt.req))
			assertCode(t, tt.want, err)
		})
	}
}

func TestAddExpense_RepaymentToLinkedMember(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")
	env.link(t, "ann", "kid", trip.ID)

	env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("40")})
	e := env.addExpense(t, "bob", &api.AddExpenseRequest{
		TripID:   trip.ID,
		Amount:   dec("20"),
		Category: "REPAYMENT",
		Split:    map[string]decimal.Decimal{"kid": dec("20")},
	})

	assert.Equal(t, "REPAYMENT", e.Category)
	require.Len(t, e.Split, 1)
	assertDec(t, "20", e.Split["ann"])

	got := env.balances(t, "ann", trip.ID)
	assert.True(t, got.Settled)
	assertDec(t, "40", got.TotalSpent)
}

func TestAddExpense_SplitWithinTolerance(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")

	e := env.addExpense(t, "ann", &api.AddExpenseRequest{
		TripID: trip.ID,
		Amount: dec("10"),
		Split:  map[string]decimal.Decimal{"ann": dec("4.5"), "bob": dec("4.8")},
	})
	assertDec(t, "10", e.Amount)
	assertDec(t, "4.8", e.Split["bob"])
}

func TestGetBalances_WithLinkedHousehold(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")
	env.link(t, "ann", "kid", trip.ID)

	env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("90"), Category: "FOOD"})
	// Paid by the kid, charged to bob: credited to ann's household
	env.addExpense(t, "kid", &api.AddExpenseRequest{
		TripID: trip.ID,
		Amount: dec("20"),
		Split:  map[string]decimal.Decimal{"bob": dec("20")},
	})

	got := env.balances(t, "bob", trip.ID)

	assertDec(t, "110", got.TotalSpent)
	assert.False(t, got.Settled)
	require.Len(t, got.Balances, 2)

	assert.Equal(t, "ann", got.Balances[0].MasterID)
	assert.Equal(t, "Ann + Kid", got.Balances[0].Name)
	assertDec(t, "65", got.Balances[0].Balance)
	assertDec(t, "110", got.Balances[0].TotalPaid)
	assert.Nil(t, got.Balances[0].Converted)

	assert.Equal(t, "bob", got.Balances[1].MasterID)
	assertDec(t, "-65", got.Balances[1].Balance)

	require.Len(t, got.Transfers, 1)
	tr := got.Transfers[0]
	assert.Equal(t, "bob", tr.FromID)
	assert.Equal(t, "Bob", tr.FromName)
	assert.Equal(t, "ann", tr.ToID)
	assert.Equal(t, "Ann + Kid", tr.ToName)
	assertDec(t, "65", tr.Amount)
}

func TestGetBalances_Converted(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")

	_, err := env.trips.SetRate(ctx, as("ann", &api.SetRateRequest{TripID: trip.ID, Rate: dec("0.5")}))
	require.NoError(t, err)
	env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("100")})

	got := env.balances(t, "ann", trip.ID)
	assertDec(t, "0.5", got.Rate)
	require.NotNil(t, got.Balances[0].Converted)
	assertDec(t, "25", *got.Balances[0].Converted)
	require.Len(t, got.Transfers, 1)
	require.NotNil(t, got.Transfers[0].Converted)
	assertDec(t, "25", *got.Transfers[0].Converted)
}

func TestRecordRepayment_SettlesTrip(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob", "cat")

	env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("90")})

	hint, err := env.ledger.GetRepaymentHint(ctx, as("bob", &api.GetRepaymentHintRequest{TripID: trip.ID, ToID: "ann"}))
	require.NoError(t, err)
	assertDec(t, "30", hint.Msg.Owed)

	for _, id := range []string{"bob", "cat"} {
		resp, err := env.ledger.RecordRepayment(ctx, as(id, &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "ann", Amount: dec("30")}))
		require.NoError(t, err)
		assert.Equal(t, "REPAYMENT", resp.Msg.Expense.Category)
		assertDec(t, "30", resp.Msg.Expense.Split["ann"])
	}

	got := env.balances(t, "ann", trip.ID)
	assert.True(t, got.Settled)
	assert.Empty(t, got.Transfers)
	// Repayments are not spending
	assertDec(t, "90", got.TotalSpent)

	hint, err = env.ledger.GetRepaymentHint(ctx, as("bob", &api.GetRepaymentHintRequest{TripID: trip.ID, ToID: "ann"}))
	require.NoError(t, err)
	assertDec(t, "0", hint.Msg.Owed)
}

func TestRecordRepayment_Validation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	env.link(t, "ann", "kid", trip.ID)

	_, err := env.ledger.RecordRepayment(ctx, as("kid", &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "ann", Amount: dec("5")}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.ledger.RecordRepayment(ctx, as("bob", &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "eve", Amount: dec("5")}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.ledger.RecordRepayment(ctx, as("bob", &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "ann", Amount: dec("-5")}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.ledger.RecordRepayment(ctx, as("eve", &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "ann", Amount: dec("5")}))
	assertCode(t, connect.CodePermissionDenied, err)
}

func TestRecordTreat(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	env.link(t, "ann", "kid", trip.ID)

	resp, err := env.ledger.RecordTreat(ctx, as("kid", &api.RecordTreatRequest{TripID: trip.ID, Amount: dec("40")}))
	require.NoError(t, err)
	assert.Equal(t, "FUN", resp.Msg.Expense.Category)
	assert.Equal(t, "Treat", resp.Msg.Expense.Description)
	require.Len(t, resp.Msg.Expense.Split, 1)
	assertDec(t, "40", resp.Msg.Expense.Split["ann"])

	got := env.balances(t, "bob", trip.ID)
	assert.True(t, got.Settled)
	assertDec(t, "40", got.TotalSpent)
}

func TestSpinRoulette(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob", "cat")
	env.link(t, "ann", "kid", trip.ID)

	var bound int
	env.ledgerSvc.pick = func(n int) int {
		bound = n
		return 0
	}

	resp, err := env.ledger.SpinRoulette(context.Background(), as("cat", &api.SpinRouletteRequest{TripID: trip.ID}))
	require.NoError(t, err)
	assert.Equal(t, 3, bound, "one slot per household")
	assert.Equal(t, "ann", resp.Msg.MasterID)
	assert.Equal(t, "Ann + Kid", resp.Msg.Name)
}

func TestListAndDeleteExpenses(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")

	first := env.addExpense(t, "ann", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("10"), Description: "first"})
	env.addExpense(t, "bob", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("20"), Description: "second"})

	list, err := env.ledger.ListExpenses(ctx, as("ann", &api.ListExpensesRequest{TripID: trip.ID}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Expenses, 2)
	assert.Equal(t, "second", list.Msg.Expenses[0].Description)

	limited, err := env.ledger.ListExpenses(ctx, as("ann", &api.ListExpensesRequest{TripID: trip.ID, Limit: 1}))
	require.NoError(t, err)
	assert.Len(t, limited.Msg.Expenses, 1)

	_, err = env.ledger.DeleteExpense(ctx, as("bob", &api.DeleteExpenseRequest{TripID: trip.ID, ExpenseID: first.ID}))
	require.NoError(t, err)

	_, err = env.ledger.DeleteExpense(ctx, as("bob", &api.DeleteExpenseRequest{TripID: trip.ID, ExpenseID: first.ID}))
	assertCode(t, connect.CodeNotFound, err)

	got := env.balances(t, "ann", trip.ID)
	assertDec(t, "20", got.TotalSpent)
}

func TestGetMyStats(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	env.link(t, "ann", "kid", trip.ID)

	env.addExpense(t, "bob", &api.AddExpenseRequest{TripID: trip.ID, Amount: dec("60"), Category: "FOOD"})
	env.addExpense(t, "bob", &api.AddExpenseRequest{
		TripID:   trip.ID,
		Amount:   dec("10"),
		Category: "ALCOHOL",
		Split:    map[string]decimal.Decimal{"kid": dec("10")},
	})
	_, err := env.ledger.RecordRepayment(ctx, as("ann", &api.RecordRepaymentRequest{TripID: trip.ID, ToID: "bob", Amount: dec("40")}))
	require.NoError(t, err)

	// The kid sees the household's numbers
	resp, err := env.ledger.GetMyStats(ctx, as("kid", &api.GetMyStatsRequest{TripID: trip.ID}))
	require.NoError(t, err)

	stats := resp.Msg
	assertDec(t, "40", stats.TotalShare)
	assertDec(t, "30", stats.ByCategory["FOOD"])
	assertDec(t, "10", stats.ByCategory["ALCOHOL"])
	_, hasRepayment := stats.ByCategory["REPAYMENT"]
	assert.False(t, hasRepayment)

	require.Len(t, stats.Repaid, 1)
	assert.Equal(t, "bob", stats.Repaid[0].CounterpartyID)
	assert.Equal(t, "Bob", stats.Repaid[0].CounterpartyName)
	assertDec(t, "40", stats.Repaid[0].Amount)
	assert.Empty(t, stats.Received)
}

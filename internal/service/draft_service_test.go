package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/auth"
	"github.com/mmynk/splitopus/internal/middleware"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
)

func (e *testEnv) startDraft(t *testing.T, caller, tripID, amount string) *api.Draft {
	t.Helper()
	resp, err := e.drafts.StartDraft(context.Background(), as(caller, &api.StartDraftRequest{
		TripID:      tripID,
		Amount:      dec(amount),
		Description: "Taxi",
	}))
	require.NoError(t, err, "StartDraft failed")
	return resp.Msg.Draft
}

func TestStartDraft(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob", "cat")
	env.link(t, "ann", "kid", trip.ID)

	draft := env.startDraft(t, "bob", trip.ID, "90")

	assert.NotEmpty(t, draft.ID)
	assert.Equal(t, "bob", draft.PayerID)
	assert.Equal(t, "OTHER", draft.Category)
	assert.Greater(t, draft.ExpiresAt, time.Now().Unix())
	assert.Equal(t, []api.DraftParticipant{
		{MasterID: "ann", Name: "Ann + Kid", Selected: true},
		{MasterID: "bob", Name: "Bob", Selected: true},
		{MasterID: "cat", Name: "Cat", Selected: true},
	}, draft.Participants)
}

func TestDraft_ToggleAndConfirm(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob", "cat")
	draft := env.startDraft(t, "bob", trip.ID, "90")

	cat, err := env.drafts.SetDraftCategory(ctx, as("bob", &api.SetDraftCategoryRequest{DraftID: draft.ID, Category: "transport"}))
	require.NoError(t, err)
	assert.Equal(t, "TRANSPORT", cat.Msg.Draft.Category)

	toggled, err := env.drafts.ToggleDraftParticipant(ctx, as("bob", &api.ToggleDraftParticipantRequest{DraftID: draft.ID, MasterID: "cat"}))
	require.NoError(t, err)
	assert.False(t, toggled.Msg.Draft.Participants[2].Selected)

	resp, err := env.drafts.ConfirmDraft(ctx, as("bob", &api.ConfirmDraftRequest{DraftID: draft.ID}))
	require.NoError(t, err)

	e := resp.Msg.Expense
	assert.Equal(t, "TRANSPORT", e.Category)
	assert.Equal(t, "Taxi", e.Description)
	require.Len(t, e.Split, 2)
	assertDec(t, "45", e.Split["ann"])
	assertDec(t, "45", e.Split["bob"])

	// The draft is gone once committed
	_, err = env.drafts.GetDraft(ctx, as("bob", &api.GetDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestDraft_ConfirmWithNobodySelected(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	for _, id := range []string{"ann", "bob"} {
		_, err := env.drafts.ToggleDraftParticipant(ctx, as("ann", &api.ToggleDraftParticipantRequest{DraftID: draft.ID, MasterID: id}))
		require.NoError(t, err)
	}

	_, err := env.drafts.ConfirmDraft(ctx, as("ann", &api.ConfirmDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestDraft_ConfirmCustomSplit(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob", "cat")
	draft := env.startDraft(t, "ann", trip.ID, "100")

	_, err := env.drafts.ConfirmCustomSplit(ctx, as("ann", &api.ConfirmCustomSplitRequest{
		DraftID: draft.ID,
		Amounts: []decimal.Decimal{dec("50"), dec("50")},
	}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.drafts.ConfirmCustomSplit(ctx, as("ann", &api.ConfirmCustomSplitRequest{
		DraftID: draft.ID,
		Amounts: []decimal.Decimal{dec("10"), dec("10"), dec("10")},
	}))
	assertCode(t, connect.CodeInvalidArgument, err)

	resp, err := env.drafts.ConfirmCustomSplit(ctx, as("ann", &api.ConfirmCustomSplitRequest{
		DraftID: draft.ID,
		Amounts: []decimal.Decimal{dec("60"), dec("0"), dec("40.5")},
	}))
	require.NoError(t, err)

	split := resp.Msg.Expense.Split
	require.Len(t, split, 2)
	assertDec(t, "60", split["ann"])
	assertDec(t, "40.5", split["cat"])
}

func TestDraft_Validation(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	_, err := env.drafts.SetDraftCategory(ctx, as("ann", &api.SetDraftCategoryRequest{DraftID: draft.ID, Category: "REPAYMENT"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.drafts.ToggleDraftParticipant(ctx, as("ann", &api.ToggleDraftParticipantRequest{DraftID: draft.ID, MasterID: "eve"}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.drafts.GetDraft(ctx, as("bob", &api.GetDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = env.drafts.StartDraft(ctx, as("ann", &api.StartDraftRequest{TripID: trip.ID, Amount: decimal.Zero}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.drafts.GetDraft(ctx, as("ann", &api.GetDraftRequest{DraftID: "missing"}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestCancelDraft(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	_, err := env.drafts.CancelDraft(ctx, as("ann", &api.CancelDraftRequest{DraftID: draft.ID}))
	require.NoError(t, err)

	_, err = env.drafts.CancelDraft(ctx, as("ann", &api.CancelDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodeNotFound, err)

	// Nothing was booked
	got := env.balances(t, "ann", trip.ID)
	assert.True(t, got.TotalSpent.IsZero())
}

func TestDraft_Expires(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	later := time.Now().Add(testDraftTTL + time.Minute)
	env.draftSvc.now = func() time.Time { return later }

	_, err := env.drafts.ConfirmDraft(ctx, as("ann", &api.ConfirmDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodeNotFound, err)

	// The expired draft was removed from the store
	_, err = env.store.GetDraft(ctx, draft.ID)
	assert.Error(t, err)
}

func TestDraft_ExpiresExactlyAtTTL(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	stored, err := env.store.GetDraft(ctx, draft.ID)
	require.NoError(t, err)
	created := time.Unix(stored.CreatedAt, 0)

	env.draftSvc.now = func() time.Time { return created.Add(testDraftTTL - time.Second) }
	_, err = env.drafts.GetDraft(ctx, as("ann", &api.GetDraftRequest{DraftID: draft.ID}))
	require.NoError(t, err, "draft is live until its ttl has passed")

	env.draftSvc.now = func() time.Time { return created.Add(testDraftTTL) }
	_, err = env.drafts.GetDraft(ctx, as("ann", &api.GetDraftRequest{DraftID: draft.ID}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestDraft_FractionalTTLIsNotTruncated(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	stored, err := env.store.GetDraft(context.Background(), draft.ID)
	require.NoError(t, err)

	svc := NewDraftService(env.store, 1500*time.Millisecond)
	svc.now = func() time.Time { return time.Unix(stored.CreatedAt, 0).Add(time.Second) }

	ctx := middleware.WithIdentity(context.Background(), &auth.Identity{AccountID: "ann", Name: "Ann"})
	_, err = svc.GetDraft(ctx, connect.NewRequest(&api.GetDraftRequest{DraftID: draft.ID}))
	require.NoError(t, err)
}

// failingDeleteStore stores everything but cannot delete drafts.
type failingDeleteStore struct {
	storage.Store
}

func (failingDeleteStore) DeleteDraft(context.Context, string) error {
	return errors.New("disk full")
}

func TestConfirmDraft_SucceedsWhenDraftCannotBeDropped(t *testing.T) {
	env := setupTestServer(t)
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "40")

	svc := NewDraftService(failingDeleteStore{Store: env.store}, testDraftTTL)
	ctx := middleware.WithIdentity(context.Background(), &auth.Identity{AccountID: "ann", Name: "Ann"})

	resp, err := svc.ConfirmDraft(ctx, connect.NewRequest(&api.ConfirmDraftRequest{DraftID: draft.ID}))
	require.NoError(t, err, "the expense is stored, so the confirmation stands")
	require.NotNil(t, resp.Msg.Expense)
	assertDec(t, "40", resp.Msg.Expense.Amount)

	list, err := env.ledger.ListExpenses(context.Background(), as("ann", &api.ListExpensesRequest{TripID: trip.ID}))
	require.NoError(t, err)
	assert.Len(t, list.Msg.Expenses, 1)
}

func TestDraftSweeper(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")
	draft := env.startDraft(t, "ann", trip.ID, "10")

	sweeper := NewDraftSweeper(env.store, testDraftTTL, time.Minute)

	n, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh drafts survive")

	sweeper.now = func() time.Time { return time.Now().Add(testDraftTTL) }
	n, err = sweeper.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = env.store.GetDraft(ctx, draft.ID)
	assert.Error(t, err)
}

func TestDraftSweeper_StopsWithContext(t *testing.T) {
	env := setupTestServer(t)
	sweeper := NewDraftSweeper(env.store, testDraftTTL, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

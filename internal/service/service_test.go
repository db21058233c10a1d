package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/auth"
	"github.com/mmynk/splitopus/internal/middleware"
	"github.com/mmynk/splitopus/internal/storage/sqlite"
	"github.com/mmynk/splitopus/pkg/api"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

const testDraftTTL = 30 * time.Minute

// testEnv is a running server with every service mounted and a client for each.
type testEnv struct {
	store *sqlite.SQLiteStore

	ledgerSvc *LedgerService
	draftSvc  *DraftService

	accounts *apiconnect.AccountServiceClient
	trips    *apiconnect.TripServiceClient
	ledger   *apiconnect.LedgerServiceClient
	drafts   *apiconnect.DraftServiceClient
}

// setupTestServer creates a test server backed by a temporary sqlite database.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "failed to create store")

	env := &testEnv{
		store:     store,
		ledgerSvc: NewLedgerService(store),
		draftSvc:  NewDraftService(store, testDraftTTL),
	}

	interceptors := connect.WithInterceptors(middleware.RequireAuth(auth.DevAuthenticator{}))
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAccountServiceHandler(NewAccountService(store), interceptors))
	mux.Handle(apiconnect.NewTripServiceHandler(NewTripService(store), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(env.ledgerSvc, interceptors))
	mux.Handle(apiconnect.NewDraftServiceHandler(env.draftSvc, interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env.accounts = apiconnect.NewAccountServiceClient(http.DefaultClient, server.URL)
	env.trips = apiconnect.NewTripServiceClient(http.DefaultClient, server.URL)
	env.ledger = apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)
	env.drafts = apiconnect.NewDraftServiceClient(http.DefaultClient, server.URL)
	return env
}

// as builds a request sent by accountID. The display name is the
// capitalized ID, so "ann" is called "Ann".
func as[T any](accountID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(auth.AccountIDHeader, accountID)
	req.Header().Set(auth.AccountNameHeader, displayName(accountID))
	return req
}

func displayName(id string) string {
	return strings.ToUpper(id[:1]) + id[1:]
}

// newTrip creates a trip owned by creator and joins every other account.
func (e *testEnv) newTrip(t *testing.T, creator string, joiners ...string) *api.Trip {
	t.Helper()
	ctx := context.Background()

	resp, err := e.trips.CreateTrip(ctx, as(creator, &api.CreateTripRequest{Name: "Bangkok"}))
	require.NoError(t, err, "CreateTrip failed")

	trip := resp.Msg.Trip
	for _, id := range joiners {
		joined, err := e.trips.JoinTrip(ctx, as(id, &api.JoinTripRequest{Code: trip.Code}))
		require.NoError(t, err, "JoinTrip failed for %s", id)
		trip = joined.Msg.Trip
	}
	return trip
}

// link makes child part of master's household within trip.
func (e *testEnv) link(t *testing.T, master, child, tripID string) {
	t.Helper()
	ctx := context.Background()

	_, err := e.accounts.RegisterAccount(ctx, as(child, &api.RegisterAccountRequest{}))
	require.NoError(t, err)
	_, err = e.accounts.ApproveLink(ctx, as(master, &api.ApproveLinkRequest{ChildID: child, TripID: tripID}))
	require.NoError(t, err, "ApproveLink failed")
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "expected connect error, got %v", err)
	assert.Equal(t, want, connectErr.Code(), "unexpected code: %v", err)
}

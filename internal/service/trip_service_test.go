package service

import (
	"context"
	"strings"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/pkg/api"
)

func TestCreateTrip(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.trips.CreateTrip(context.Background(), as("ann", &api.CreateTripRequest{Name: "Bangkok"}))
	require.NoError(t, err)

	trip := resp.Msg.Trip
	assert.NotEmpty(t, trip.ID)
	assert.Len(t, trip.Code, 6)
	assert.Equal(t, models.DefaultCurrency, trip.Currency)
	assert.Equal(t, "ann", trip.CreatorID)
	require.Len(t, trip.Members, 1)
	assert.Equal(t, api.Member{AccountID: "ann", Name: "Ann", MasterID: "ann"}, trip.Members[0])
}

func TestCreateTrip_Validation(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.trips.CreateTrip(context.Background(), as("ann", &api.CreateTripRequest{Name: "  "}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestJoinTrip(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann")

	// Codes are case-insensitive
	resp, err := env.trips.JoinTrip(ctx, as("bob", &api.JoinTripRequest{Code: strings.ToLower(trip.Code)}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Trip.Members, 2)

	// Joining again changes nothing
	resp, err = env.trips.JoinTrip(ctx, as("bob", &api.JoinTripRequest{Code: trip.Code}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Trip.Members, 2)
}

func TestJoinTrip_UnknownCode(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.trips.JoinTrip(context.Background(), as("bob", &api.JoinTripRequest{Code: "NOPE00"}))
	assertCode(t, connect.CodeNotFound, err)
}

func TestGetTrip_Errors(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann")

	_, err := env.trips.GetTrip(ctx, as("ann", &api.GetTripRequest{TripID: "missing"}))
	assertCode(t, connect.CodeNotFound, err)

	_, err = env.trips.GetTrip(ctx, as("eve", &api.GetTripRequest{TripID: trip.ID}))
	assertCode(t, connect.CodePermissionDenied, err)

	_, err = env.trips.GetTrip(ctx, as("ann", &api.GetTripRequest{}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestListMyTrips(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	first := env.newTrip(t, "ann", "bob")
	env.newTrip(t, "bob")

	resp, err := env.trips.ListMyTrips(ctx, as("ann", &api.ListMyTripsRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Trips, 1)
	assert.Equal(t, first.ID, resp.Msg.Trips[0].ID)

	resp, err = env.trips.ListMyTrips(ctx, as("bob", &api.ListMyTripsRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Trips, 2)

	resp, err = env.trips.ListMyTrips(ctx, as("eve", &api.ListMyTripsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Trips)
}

func TestSetCurrencyAndRate(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann")

	cur, err := env.trips.SetCurrency(ctx, as("ann", &api.SetCurrencyRequest{TripID: trip.ID, Currency: "eur"}))
	require.NoError(t, err)
	assert.Equal(t, "EUR", cur.Msg.Trip.Currency)

	rate, err := env.trips.SetRate(ctx, as("ann", &api.SetRateRequest{TripID: trip.ID, Rate: decimal.RequireFromString("0.026")}))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.026").Equal(rate.Msg.Trip.Rate))

	_, err = env.trips.SetRate(ctx, as("ann", &api.SetRateRequest{TripID: trip.ID, Rate: decimal.NewFromInt(-1)}))
	assertCode(t, connect.CodeInvalidArgument, err)

	_, err = env.trips.SetCurrency(ctx, as("ann", &api.SetCurrencyRequest{TripID: trip.ID}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

func TestAddNote(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	trip := env.newTrip(t, "ann", "bob")

	resp, err := env.trips.AddNote(ctx, as("bob", &api.AddNoteRequest{TripID: trip.ID, Text: "Hotel wifi: hunter2"}))
	require.NoError(t, err)
	assert.Equal(t, "Bob", resp.Msg.Note.AuthorName)

	got, err := env.trips.GetTrip(ctx, as("ann", &api.GetTripRequest{TripID: trip.ID}))
	require.NoError(t, err)
	require.Len(t, got.Msg.Trip.Notes, 1)
	assert.Equal(t, "Hotel wifi: hunter2", got.Msg.Trip.Notes[0].Text)

	_, err = env.trips.AddNote(ctx, as("bob", &api.AddNoteRequest{TripID: trip.ID}))
	assertCode(t, connect.CodeInvalidArgument, err)
}

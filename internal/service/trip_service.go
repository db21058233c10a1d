package service

import (
	"context"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/internal/models"
	"github.com/mmynk/splitopus/internal/storage"
	"github.com/mmynk/splitopus/pkg/api"
	"github.com/mmynk/splitopus/pkg/api/apiconnect"
)

// Ensure TripService implements the handler interface
var _ apiconnect.TripServiceHandler = (*TripService)(nil)

// TripService implements the Connect TripService.
type TripService struct {
	ledger
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{ledger{store: store}}
}

func normalizeCurrency(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// tripResponse reloads a trip for the caller and converts it.
func (s *TripService) tripResponse(ctx context.Context, tripID, caller string) (*api.Trip, error) {
	snap, err := s.loadTrip(ctx, tripID, caller)
	if err != nil {
		return nil, err
	}
	trip, err := s.buildTrip(ctx, snap)
	if err != nil {
		return nil, toConnectError(err)
	}
	return trip, nil
}

// CreateTrip creates a trip with the caller as first member.
func (s *TripService) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateTrip request received", "name", req.Msg.Name, "creator_id", caller)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("name: %w", errEmptyField)
	}
	if err := s.ensureAccount(ctx, caller); err != nil {
		return nil, toConnectError(err)
	}

	trip := &models.Trip{
		Name:      name,
		Currency:  normalizeCurrency(req.Msg.Currency),
		CreatorID: caller,
	}
	if err := s.store.CreateTrip(ctx, trip); err != nil {
		slog.Error("CreateTrip failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Trip created", "trip_id", trip.ID, "code", trip.Code)

	out, err := s.tripResponse(ctx, trip.ID, caller)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateTripResponse{Trip: out}), nil
}

// GetTrip returns a trip with its members and notes.
func (s *TripService) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetTrip request received", "trip_id", req.Msg.TripID)

	out, err := s.tripResponse(ctx, req.Msg.TripID, caller)
	if err != nil {
		slog.Error("GetTrip failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, err
	}
	return connect.NewResponse(&api.GetTripResponse{Trip: out}), nil
}

// JoinTrip adds the caller to the trip behind a join code.
// Joining a trip twice is harmless.
func (s *TripService) JoinTrip(ctx context.Context, req *connect.Request[api.JoinTripRequest]) (*connect.Response[api.JoinTripResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("JoinTrip request received", "code", req.Msg.Code, "account_id", caller)

	if strings.TrimSpace(req.Msg.Code) == "" {
		return nil, invalidArgument("code: %w", errEmptyField)
	}
	tripID, err := s.store.GetTripIDByCode(ctx, req.Msg.Code)
	if err != nil {
		slog.Warn("JoinTrip unknown code", "code", req.Msg.Code)
		return nil, toConnectError(err)
	}

	if err := s.ensureAccount(ctx, caller); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.store.AddTripMember(ctx, tripID, caller); err != nil {
		slog.Error("JoinTrip failed", "trip_id", tripID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Trip joined", "trip_id", tripID, "account_id", caller)

	out, err := s.tripResponse(ctx, tripID, caller)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.JoinTripResponse{Trip: out}), nil
}

// ListMyTrips lists the trips the caller belongs to.
func (s *TripService) ListMyTrips(ctx context.Context, req *connect.Request[api.ListMyTripsRequest]) (*connect.Response[api.ListMyTripsResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListMyTrips request received", "account_id", caller)

	trips, err := s.store.ListTripsForAccount(ctx, caller)
	if err != nil {
		slog.Error("ListMyTrips failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]api.TripSummary, 0, len(trips))
	for _, t := range trips {
		out = append(out, api.TripSummary{
			ID:        t.ID,
			Name:      t.Name,
			Code:      t.Code,
			Currency:  t.Currency,
			CreatedAt: t.CreatedAt,
		})
	}

	slog.Info("ListMyTrips successful", "count", len(out))

	return connect.NewResponse(&api.ListMyTripsResponse{Trips: out}), nil
}

// SetCurrency changes the trip's display currency.
func (s *TripService) SetCurrency(ctx context.Context, req *connect.Request[api.SetCurrencyRequest]) (*connect.Response[api.SetCurrencyResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetCurrency request received", "trip_id", req.Msg.TripID, "currency", req.Msg.Currency)

	currency := normalizeCurrency(req.Msg.Currency)
	if currency == "" {
		return nil, invalidArgument("currency: %w", errEmptyField)
	}
	if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTripCurrency(ctx, req.Msg.TripID, currency); err != nil {
		slog.Error("SetCurrency failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.tripResponse(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetCurrencyResponse{Trip: out}), nil
}

// SetRate changes the display conversion rate. Zero clears it.
func (s *TripService) SetRate(ctx context.Context, req *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SetRate request received", "trip_id", req.Msg.TripID, "rate", req.Msg.Rate.String())

	if req.Msg.Rate.IsNegative() {
		return nil, invalidArgument("rate must not be negative, got %s", req.Msg.Rate)
	}
	if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
		return nil, err
	}

	if err := s.store.UpdateTripRate(ctx, req.Msg.TripID, req.Msg.Rate); err != nil {
		slog.Error("SetRate failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}

	out, err := s.tripResponse(ctx, req.Msg.TripID, caller)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SetRateResponse{Trip: out}), nil
}

// AddNote pins a free-text note to the trip.
func (s *TripService) AddNote(ctx context.Context, req *connect.Request[api.AddNoteRequest]) (*connect.Response[api.AddNoteResponse], error) {
	caller, err := callerID(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddNote request received", "trip_id", req.Msg.TripID)

	text := strings.TrimSpace(req.Msg.Text)
	if text == "" {
		return nil, invalidArgument("text: %w", errEmptyField)
	}
	if _, err := s.loadTrip(ctx, req.Msg.TripID, caller); err != nil {
		return nil, err
	}

	names, err := s.accountNames(ctx, caller)
	if err != nil {
		return nil, toConnectError(err)
	}

	note := &models.Note{TripID: req.Msg.TripID, AuthorName: names[caller], Text: text}
	if err := s.store.AddNote(ctx, note); err != nil {
		slog.Error("AddNote failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, toConnectError(err)
	}

	out := toAPINote(*note)
	return connect.NewResponse(&api.AddNoteResponse{Note: &out}), nil
}

package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/pkg/api"
)

// TripServiceName is the fully-qualified name of the TripService.
const TripServiceName = "splitopus.v1.TripService"

// Procedure paths of the TripService.
const (
	TripServiceCreateTripProcedure  = "/" + TripServiceName + "/CreateTrip"
	TripServiceGetTripProcedure     = "/" + TripServiceName + "/GetTrip"
	TripServiceJoinTripProcedure    = "/" + TripServiceName + "/JoinTrip"
	TripServiceListMyTripsProcedure = "/" + TripServiceName + "/ListMyTrips"
	TripServiceSetCurrencyProcedure = "/" + TripServiceName + "/SetCurrency"
	TripServiceSetRateProcedure     = "/" + TripServiceName + "/SetRate"
	TripServiceAddNoteProcedure     = "/" + TripServiceName + "/AddNote"
)

// TripServiceHandler is implemented by the server side of the TripService.
type TripServiceHandler interface {
	CreateTrip(context.Context, *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error)
	GetTrip(context.Context, *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error)
	JoinTrip(context.Context, *connect.Request[api.JoinTripRequest]) (*connect.Response[api.JoinTripResponse], error)
	ListMyTrips(context.Context, *connect.Request[api.ListMyTripsRequest]) (*connect.Response[api.ListMyTripsResponse], error)
	SetCurrency(context.Context, *connect.Request[api.SetCurrencyRequest]) (*connect.Response[api.SetCurrencyResponse], error)
	SetRate(context.Context, *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error)
	AddNote(context.Context, *connect.Request[api.AddNoteRequest]) (*connect.Response[api.AddNoteResponse], error)
}

// NewTripServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewTripServiceHandler(svc TripServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(TripServiceCreateTripProcedure, connect.NewUnaryHandler(TripServiceCreateTripProcedure, svc.CreateTrip, opts...))
	mux.Handle(TripServiceGetTripProcedure, connect.NewUnaryHandler(TripServiceGetTripProcedure, svc.GetTrip, opts...))
	mux.Handle(TripServiceJoinTripProcedure, connect.NewUnaryHandler(TripServiceJoinTripProcedure, svc.JoinTrip, opts...))
	mux.Handle(TripServiceListMyTripsProcedure, connect.NewUnaryHandler(TripServiceListMyTripsProcedure, svc.ListMyTrips, opts...))
	mux.Handle(TripServiceSetCurrencyProcedure, connect.NewUnaryHandler(TripServiceSetCurrencyProcedure, svc.SetCurrency, opts...))
	mux.Handle(TripServiceSetRateProcedure, connect.NewUnaryHandler(TripServiceSetRateProcedure, svc.SetRate, opts...))
	mux.Handle(TripServiceAddNoteProcedure, connect.NewUnaryHandler(TripServiceAddNoteProcedure, svc.AddNote, opts...))
	return "/" + TripServiceName + "/", mux
}

// TripServiceClient is a typed client for the TripService.
type TripServiceClient struct {
	createTrip  *connect.Client[api.CreateTripRequest, api.CreateTripResponse]
	getTrip     *connect.Client[api.GetTripRequest, api.GetTripResponse]
	joinTrip    *connect.Client[api.JoinTripRequest, api.JoinTripResponse]
	listMyTrips *connect.Client[api.ListMyTripsRequest, api.ListMyTripsResponse]
	setCurrency *connect.Client[api.SetCurrencyRequest, api.SetCurrencyResponse]
	setRate     *connect.Client[api.SetRateRequest, api.SetRateResponse]
	addNote     *connect.Client[api.AddNoteRequest, api.AddNoteResponse]
}

// NewTripServiceClient constructs a client for the TripService at baseURL
// (e.g., http://localhost:8080).
func NewTripServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TripServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &TripServiceClient{
		createTrip:  connect.NewClient[api.CreateTripRequest, api.CreateTripResponse](httpClient, baseURL+TripServiceCreateTripProcedure, opts...),
		getTrip:     connect.NewClient[api.GetTripRequest, api.GetTripResponse](httpClient, baseURL+TripServiceGetTripProcedure, opts...),
		joinTrip:    connect.NewClient[api.JoinTripRequest, api.JoinTripResponse](httpClient, baseURL+TripServiceJoinTripProcedure, opts...),
		listMyTrips: connect.NewClient[api.ListMyTripsRequest, api.ListMyTripsResponse](httpClient, baseURL+TripServiceListMyTripsProcedure, opts...),
		setCurrency: connect.NewClient[api.SetCurrencyRequest, api.SetCurrencyResponse](httpClient, baseURL+TripServiceSetCurrencyProcedure, opts...),
		setRate:     connect.NewClient[api.SetRateRequest, api.SetRateResponse](httpClient, baseURL+TripServiceSetRateProcedure, opts...),
		addNote:     connect.NewClient[api.AddNoteRequest, api.AddNoteResponse](httpClient, baseURL+TripServiceAddNoteProcedure, opts...),
	}
}

func (c *TripServiceClient) CreateTrip(ctx context.Context, req *connect.Request[api.CreateTripRequest]) (*connect.Response[api.CreateTripResponse], error) {
	return c.createTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) GetTrip(ctx context.Context, req *connect.Request[api.GetTripRequest]) (*connect.Response[api.GetTripResponse], error) {
	return c.getTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) JoinTrip(ctx context.Context, req *connect.Request[api.JoinTripRequest]) (*connect.Response[api.JoinTripResponse], error) {
	return c.joinTrip.CallUnary(ctx, req)
}

func (c *TripServiceClient) ListMyTrips(ctx context.Context, req *connect.Request[api.ListMyTripsRequest]) (*connect.Response[api.ListMyTripsResponse], error) {
	return c.listMyTrips.CallUnary(ctx, req)
}

func (c *TripServiceClient) SetCurrency(ctx context.Context, req *connect.Request[api.SetCurrencyRequest]) (*connect.Response[api.SetCurrencyResponse], error) {
	return c.setCurrency.CallUnary(ctx, req)
}

func (c *TripServiceClient) SetRate(ctx context.Context, req *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error) {
	return c.setRate.CallUnary(ctx, req)
}

func (c *TripServiceClient) AddNote(ctx context.Context, req *connect.Request[api.AddNoteRequest]) (*connect.Response[api.AddNoteResponse], error) {
	return c.addNote.CallUnary(ctx, req)
}

package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "splitopus.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceAddExpenseProcedure       = "/" + LedgerServiceName + "/AddExpense"
	LedgerServiceDeleteExpenseProcedure    = "/" + LedgerServiceName + "/DeleteExpense"
	LedgerServiceListExpensesProcedure     = "/" + LedgerServiceName + "/ListExpenses"
	LedgerServiceRecordRepaymentProcedure  = "/" + LedgerServiceName + "/RecordRepayment"
	LedgerServiceGetRepaymentHintProcedure = "/" + LedgerServiceName + "/GetRepaymentHint"
	LedgerServiceSpinRouletteProcedure     = "/" + LedgerServiceName + "/SpinRoulette"
	LedgerServiceRecordTreatProcedure      = "/" + LedgerServiceName + "/RecordTreat"
	LedgerServiceGetBalancesProcedure      = "/" + LedgerServiceName + "/GetBalances"
	LedgerServiceGetMyStatsProcedure       = "/" + LedgerServiceName + "/GetMyStats"
)

// LedgerServiceHandler is implemented by the server side of the LedgerService.
type LedgerServiceHandler interface {
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	DeleteExpense(context.Context, *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	RecordRepayment(context.Context, *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error)
	GetRepaymentHint(context.Context, *connect.Request[api.GetRepaymentHintRequest]) (*connect.Response[api.GetRepaymentHintResponse], error)
	SpinRoulette(context.Context, *connect.Request[api.SpinRouletteRequest]) (*connect.Response[api.SpinRouletteResponse], error)
	RecordTreat(context.Context, *connect.Request[api.RecordTreatRequest]) (*connect.Response[api.RecordTreatResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	GetMyStats(context.Context, *connect.Request[api.GetMyStatsRequest]) (*connect.Response[api.GetMyStatsResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceDeleteExpenseProcedure, connect.NewUnaryHandler(LedgerServiceDeleteExpenseProcedure, svc.DeleteExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceRecordRepaymentProcedure, connect.NewUnaryHandler(LedgerServiceRecordRepaymentProcedure, svc.RecordRepayment, opts...))
	mux.Handle(LedgerServiceGetRepaymentHintProcedure, connect.NewUnaryHandler(LedgerServiceGetRepaymentHintProcedure, svc.GetRepaymentHint, opts...))
	mux.Handle(LedgerServiceSpinRouletteProcedure, connect.NewUnaryHandler(LedgerServiceSpinRouletteProcedure, svc.SpinRoulette, opts...))
	mux.Handle(LedgerServiceRecordTreatProcedure, connect.NewUnaryHandler(LedgerServiceRecordTreatProcedure, svc.RecordTreat, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(LedgerServiceGetMyStatsProcedure, connect.NewUnaryHandler(LedgerServiceGetMyStatsProcedure, svc.GetMyStats, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// LedgerServiceClient is a typed client for the LedgerService.
type LedgerServiceClient struct {
	addExpense       *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	deleteExpense    *connect.Client[api.DeleteExpenseRequest, api.DeleteExpenseResponse]
	listExpenses     *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	recordRepayment  *connect.Client[api.RecordRepaymentRequest, api.RecordRepaymentResponse]
	getRepaymentHint *connect.Client[api.GetRepaymentHintRequest, api.GetRepaymentHintResponse]
	spinRoulette     *connect.Client[api.SpinRouletteRequest, api.SpinRouletteResponse]
	recordTreat      *connect.Client[api.RecordTreatRequest, api.RecordTreatResponse]
	getBalances      *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	getMyStats       *connect.Client[api.GetMyStatsRequest, api.GetMyStatsResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService at baseURL
// (e.g., http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &LedgerServiceClient{
		addExpense:       connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		deleteExpense:    connect.NewClient[api.DeleteExpenseRequest, api.DeleteExpenseResponse](httpClient, baseURL+LedgerServiceDeleteExpenseProcedure, opts...),
		listExpenses:     connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		recordRepayment:  connect.NewClient[api.RecordRepaymentRequest, api.RecordRepaymentResponse](httpClient, baseURL+LedgerServiceRecordRepaymentProcedure, opts...),
		getRepaymentHint: connect.NewClient[api.GetRepaymentHintRequest, api.GetRepaymentHintResponse](httpClient, baseURL+LedgerServiceGetRepaymentHintProcedure, opts...),
		spinRoulette:     connect.NewClient[api.SpinRouletteRequest, api.SpinRouletteResponse](httpClient, baseURL+LedgerServiceSpinRouletteProcedure, opts...),
		recordTreat:      connect.NewClient[api.RecordTreatRequest, api.RecordTreatResponse](httpClient, baseURL+LedgerServiceRecordTreatProcedure, opts...),
		getBalances:      connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		getMyStats:       connect.NewClient[api.GetMyStatsRequest, api.GetMyStatsResponse](httpClient, baseURL+LedgerServiceGetMyStatsProcedure, opts...),
	}
}

func (c *LedgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	return c.deleteExpense.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordRepayment(ctx context.Context, req *connect.Request[api.RecordRepaymentRequest]) (*connect.Response[api.RecordRepaymentResponse], error) {
	return c.recordRepayment.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetRepaymentHint(ctx context.Context, req *connect.Request[api.GetRepaymentHintRequest]) (*connect.Response[api.GetRepaymentHintResponse], error) {
	return c.getRepaymentHint.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SpinRoulette(ctx context.Context, req *connect.Request[api.SpinRouletteRequest]) (*connect.Response[api.SpinRouletteResponse], error) {
	return c.spinRoulette.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RecordTreat(ctx context.Context, req *connect.Request[api.RecordTreatRequest]) (*connect.Response[api.RecordTreatResponse], error) {
	return c.recordTreat.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetMyStats(ctx context.Context, req *connect.Request[api.GetMyStatsRequest]) (*connect.Response[api.GetMyStatsResponse], error) {
	return c.getMyStats.CallUnary(ctx, req)
}

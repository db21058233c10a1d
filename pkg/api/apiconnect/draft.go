package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/pkg/api"
)

// DraftServiceName is the fully-qualified name of the DraftService.
const DraftServiceName = "splitopus.v1.DraftService"

// Procedure paths of the DraftService.
const (
	DraftServiceStartDraftProcedure             = "/" + DraftServiceName + "/StartDraft"
	DraftServiceSetDraftCategoryProcedure       = "/" + DraftServiceName + "/SetDraftCategory"
	DraftServiceToggleDraftParticipantProcedure = "/" + DraftServiceName + "/ToggleDraftParticipant"
	DraftServiceConfirmDraftProcedure           = "/" + DraftServiceName + "/ConfirmDraft"
	DraftServiceConfirmCustomSplitProcedure     = "/" + DraftServiceName + "/ConfirmCustomSplit"
	DraftServiceCancelDraftProcedure            = "/" + DraftServiceName + "/CancelDraft"
	DraftServiceGetDraftProcedure               = "/" + DraftServiceName + "/GetDraft"
)

// DraftServiceHandler is implemented by the server side of the DraftService.
type DraftServiceHandler interface {
	StartDraft(context.Context, *connect.Request[api.StartDraftRequest]) (*connect.Response[api.StartDraftResponse], error)
	SetDraftCategory(context.Context, *connect.Request[api.SetDraftCategoryRequest]) (*connect.Response[api.SetDraftCategoryResponse], error)
	ToggleDraftParticipant(context.Context, *connect.Request[api.ToggleDraftParticipantRequest]) (*connect.Response[api.ToggleDraftParticipantResponse], error)
	ConfirmDraft(context.Context, *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error)
	ConfirmCustomSplit(context.Context, *connect.Request[api.ConfirmCustomSplitRequest]) (*connect.Response[api.ConfirmCustomSplitResponse], error)
	CancelDraft(context.Context, *connect.Request[api.CancelDraftRequest]) (*connect.Response[api.CancelDraftResponse], error)
	GetDraft(context.Context, *connect.Request[api.GetDraftRequest]) (*connect.Response[api.GetDraftResponse], error)
}

// NewDraftServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDraftServiceHandler(svc DraftServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(DraftServiceStartDraftProcedure, connect.NewUnaryHandler(DraftServiceStartDraftProcedure, svc.StartDraft, opts...))
	mux.Handle(DraftServiceSetDraftCategoryProcedure, connect.NewUnaryHandler(DraftServiceSetDraftCategoryProcedure, svc.SetDraftCategory, opts...))
	mux.Handle(DraftServiceToggleDraftParticipantProcedure, connect.NewUnaryHandler(DraftServiceToggleDraftParticipantProcedure, svc.ToggleDraftParticipant, opts...))
	mux.Handle(DraftServiceConfirmDraftProcedure, connect.NewUnaryHandler(DraftServiceConfirmDraftProcedure, svc.ConfirmDraft, opts...))
	mux.Handle(DraftServiceConfirmCustomSplitProcedure, connect.NewUnaryHandler(DraftServiceConfirmCustomSplitProcedure, svc.ConfirmCustomSplit, opts...))
	mux.Handle(DraftServiceCancelDraftProcedure, connect.NewUnaryHandler(DraftServiceCancelDraftProcedure, svc.CancelDraft, opts...))
	mux.Handle(DraftServiceGetDraftProcedure, connect.NewUnaryHandler(DraftServiceGetDraftProcedure, svc.GetDraft, opts...))
	return "/" + DraftServiceName + "/", mux
}

// DraftServiceClient is a typed client for the DraftService.
type DraftServiceClient struct {
	startDraft             *connect.Client[api.StartDraftRequest, api.StartDraftResponse]
	setDraftCategory       *connect.Client[api.SetDraftCategoryRequest, api.SetDraftCategoryResponse]
	toggleDraftParticipant *connect.Client[api.ToggleDraftParticipantRequest, api.ToggleDraftParticipantResponse]
	confirmDraft           *connect.Client[api.ConfirmDraftRequest, api.ConfirmDraftResponse]
	confirmCustomSplit     *connect.Client[api.ConfirmCustomSplitRequest, api.ConfirmCustomSplitResponse]
	cancelDraft            *connect.Client[api.CancelDraftRequest, api.CancelDraftResponse]
	getDraft               *connect.Client[api.GetDraftRequest, api.GetDraftResponse]
}

// NewDraftServiceClient constructs a client for the DraftService at baseURL
// (e.g., http://localhost:8080).
func NewDraftServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DraftServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &DraftServiceClient{
		startDraft:             connect.NewClient[api.StartDraftRequest, api.StartDraftResponse](httpClient, baseURL+DraftServiceStartDraftProcedure, opts...),
		setDraftCategory:       connect.NewClient[api.SetDraftCategoryRequest, api.SetDraftCategoryResponse](httpClient, baseURL+DraftServiceSetDraftCategoryProcedure, opts...),
		toggleDraftParticipant: connect.NewClient[api.ToggleDraftParticipantRequest, api.ToggleDraftParticipantResponse](httpClient, baseURL+DraftServiceToggleDraftParticipantProcedure, opts...),
		confirmDraft:           connect.NewClient[api.ConfirmDraftRequest, api.ConfirmDraftResponse](httpClient, baseURL+DraftServiceConfirmDraftProcedure, opts...),
		confirmCustomSplit:     connect.NewClient[api.ConfirmCustomSplitRequest, api.ConfirmCustomSplitResponse](httpClient, baseURL+DraftServiceConfirmCustomSplitProcedure, opts...),
		cancelDraft:            connect.NewClient[api.CancelDraftRequest, api.CancelDraftResponse](httpClient, baseURL+DraftServiceCancelDraftProcedure, opts...),
		getDraft:               connect.NewClient[api.GetDraftRequest, api.GetDraftResponse](httpClient, baseURL+DraftServiceGetDraftProcedure, opts...),
	}
}

func (c *DraftServiceClient) StartDraft(ctx context.Context, req *connect.Request[api.StartDraftRequest]) (*connect.Response[api.StartDraftResponse], error) {
	return c.startDraft.CallUnary(ctx, req)
}

func (c *DraftServiceClient) SetDraftCategory(ctx context.Context, req *connect.Request[api.SetDraftCategoryRequest]) (*connect.Response[api.SetDraftCategoryResponse], error) {
	return c.setDraftCategory.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ToggleDraftParticipant(ctx context.Context, req *connect.Request[api.ToggleDraftParticipantRequest]) (*connect.Response[api.ToggleDraftParticipantResponse], error) {
	return c.toggleDraftParticipant.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ConfirmDraft(ctx context.Context, req *connect.Request[api.ConfirmDraftRequest]) (*connect.Response[api.ConfirmDraftResponse], error) {
	return c.confirmDraft.CallUnary(ctx, req)
}

func (c *DraftServiceClient) ConfirmCustomSplit(ctx context.Context, req *connect.Request[api.ConfirmCustomSplitRequest]) (*connect.Response[api.ConfirmCustomSplitResponse], error) {
	return c.confirmCustomSplit.CallUnary(ctx, req)
}

func (c *DraftServiceClient) CancelDraft(ctx context.Context, req *connect.Request[api.CancelDraftRequest]) (*connect.Response[api.CancelDraftResponse], error) {
	return c.cancelDraft.CallUnary(ctx, req)
}

func (c *DraftServiceClient) GetDraft(ctx context.Context, req *connect.Request[api.GetDraftRequest]) (*connect.Response[api.GetDraftResponse], error) {
	return c.getDraft.CallUnary(ctx, req)
}

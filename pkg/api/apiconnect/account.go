package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitopus/pkg/api"
)

// AccountServiceName is the fully-qualified name of the AccountService.
const AccountServiceName = "splitopus.v1.AccountService"

// Procedure paths of the AccountService.
const (
	AccountServiceRegisterAccountProcedure = "/" + AccountServiceName + "/RegisterAccount"
	AccountServiceGetAccountProcedure      = "/" + AccountServiceName + "/GetAccount"
	AccountServiceApproveLinkProcedure     = "/" + AccountServiceName + "/ApproveLink"
)

// AccountServiceHandler is implemented by the server side of the AccountService.
type AccountServiceHandler interface {
	RegisterAccount(context.Context, *connect.Request[api.RegisterAccountRequest]) (*connect.Response[api.RegisterAccountResponse], error)
	GetAccount(context.Context, *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error)
	ApproveLink(context.Context, *connect.Request[api.ApproveLinkRequest]) (*connect.Response[api.ApproveLinkResponse], error)
}

// NewAccountServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAccountServiceHandler(svc AccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AccountServiceRegisterAccountProcedure, connect.NewUnaryHandler(AccountServiceRegisterAccountProcedure, svc.RegisterAccount, opts...))
	mux.Handle(AccountServiceGetAccountProcedure, connect.NewUnaryHandler(AccountServiceGetAccountProcedure, svc.GetAccount, opts...))
	mux.Handle(AccountServiceApproveLinkProcedure, connect.NewUnaryHandler(AccountServiceApproveLinkProcedure, svc.ApproveLink, opts...))
	return "/" + AccountServiceName + "/", mux
}

// AccountServiceClient is a typed client for the AccountService.
type AccountServiceClient struct {
	registerAccount *connect.Client[api.RegisterAccountRequest, api.RegisterAccountResponse]
	getAccount      *connect.Client[api.GetAccountRequest, api.GetAccountResponse]
	approveLink     *connect.Client[api.ApproveLinkRequest, api.ApproveLinkResponse]
}

// NewAccountServiceClient constructs a client for the AccountService at baseURL
// (e.g., http://localhost:8080).
func NewAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AccountServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &AccountServiceClient{
		registerAccount: connect.NewClient[api.RegisterAccountRequest, api.RegisterAccountResponse](httpClient, baseURL+AccountServiceRegisterAccountProcedure, opts...),
		getAccount:      connect.NewClient[api.GetAccountRequest, api.GetAccountResponse](httpClient, baseURL+AccountServiceGetAccountProcedure, opts...),
		approveLink:     connect.NewClient[api.ApproveLinkRequest, api.ApproveLinkResponse](httpClient, baseURL+AccountServiceApproveLinkProcedure, opts...),
	}
}

func (c *AccountServiceClient) RegisterAccount(ctx context.Context, req *connect.Request[api.RegisterAccountRequest]) (*connect.Response[api.RegisterAccountResponse], error) {
	return c.registerAccount.CallUnary(ctx, req)
}

func (c *AccountServiceClient) GetAccount(ctx context.Context, req *connect.Request[api.GetAccountRequest]) (*connect.Response[api.GetAccountResponse], error) {
	return c.getAccount.CallUnary(ctx, req)
}

func (c *AccountServiceClient) ApproveLink(ctx context.Context, req *connect.Request[api.ApproveLinkRequest]) (*connect.Response[api.ApproveLinkResponse], error) {
	return c.approveLink.CallUnary(ctx, req)
}

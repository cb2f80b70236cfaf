package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/pkg/api"
)

// CustomerServiceName is the fully-qualified name of the CustomerService service.
const CustomerServiceName = "billdesk.v1.CustomerService"

// Procedure paths of the CustomerService RPCs.
const (
	CustomerServiceCreateCustomerProcedure = "/billdesk.v1.CustomerService/CreateCustomer"
	CustomerServiceListCustomersProcedure  = "/billdesk.v1.CustomerService/ListCustomers"
)

// CustomerServiceHandler is implemented by the server side of CustomerService.
type CustomerServiceHandler interface {
	CreateCustomer(context.Context, *connect.Request[api.CreateCustomerRequest]) (*connect.Response[api.CreateCustomerResponse], error)
	ListCustomers(context.Context, *connect.Request[api.ListCustomersRequest]) (*connect.Response[api.ListCustomersResponse], error)
}

// NewCustomerServiceHandler builds an HTTP handler from svc. It returns the path to
// mount it on.
func NewCustomerServiceHandler(svc CustomerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createCustomerHandler := connect.NewUnaryHandler(CustomerServiceCreateCustomerProcedure, svc.CreateCustomer, opts...)
	listCustomersHandler := connect.NewUnaryHandler(CustomerServiceListCustomersProcedure, svc.ListCustomers, opts...)
	return "/" + CustomerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case CustomerServiceCreateCustomerProcedure:
			createCustomerHandler.ServeHTTP(w, r)
		case CustomerServiceListCustomersProcedure:
			listCustomersHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// CustomerServiceClient is a client for CustomerService.
type CustomerServiceClient interface {
	CreateCustomer(context.Context, *connect.Request[api.CreateCustomerRequest]) (*connect.Response[api.CreateCustomerResponse], error)
	ListCustomers(context.Context, *connect.Request[api.ListCustomersRequest]) (*connect.Response[api.ListCustomersResponse], error)
}

type customerServiceClient struct {
	createCustomer *connect.Client[api.CreateCustomerRequest, api.CreateCustomerResponse]
	listCustomers  *connect.Client[api.ListCustomersRequest, api.ListCustomersResponse]
}

// NewCustomerServiceClient returns a client for the CustomerService served at baseURL.
func NewCustomerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) CustomerServiceClient {
	opts = clientOptions(opts)
	return &customerServiceClient{
		createCustomer: connect.NewClient[api.CreateCustomerRequest, api.CreateCustomerResponse](httpClient, baseURL+CustomerServiceCreateCustomerProcedure, opts...),
		listCustomers:  connect.NewClient[api.ListCustomersRequest, api.ListCustomersResponse](httpClient, baseURL+CustomerServiceListCustomersProcedure, opts...),
	}
}

func (c *customerServiceClient) CreateCustomer(ctx context.Context, req *connect.Request[api.CreateCustomerRequest]) (*connect.Response[api.CreateCustomerResponse], error) {
	return c.createCustomer.CallUnary(ctx, req)
}

func (c *customerServiceClient) ListCustomers(ctx context.Context, req *connect.Request[api.ListCustomersRequest]) (*connect.Response[api.ListCustomersResponse], error) {
	return c.listCustomers.CallUnary(ctx, req)
}

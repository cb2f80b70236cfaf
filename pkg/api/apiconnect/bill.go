package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/pkg/api"
)

// BillServiceName is the fully-qualified name of the BillService service.
const BillServiceName = "billdesk.v1.BillService"

// Procedure paths of the BillService RPCs.
const (
	BillServiceCreateBillProcedure       = "/billdesk.v1.BillService/CreateBill"
	BillServiceListBillsProcedure        = "/billdesk.v1.BillService/ListBills"
	BillServiceGetBillProcedure          = "/billdesk.v1.BillService/GetBill"
	BillServiceDeleteBillProcedure       = "/billdesk.v1.BillService/DeleteBill"
	BillServiceGetMonthlyReportProcedure = "/billdesk.v1.BillService/GetMonthlyReport"
)

// BillServiceHandler is implemented by the server side of BillService.
type BillServiceHandler interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	GetMonthlyReport(context.Context, *connect.Request[api.GetMonthlyReportRequest]) (*connect.Response[api.GetMonthlyReportResponse], error)
}

// NewBillServiceHandler builds an HTTP handler from svc. It returns the path to
// mount it on.
func NewBillServiceHandler(svc BillServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	createBillHandler := connect.NewUnaryHandler(BillServiceCreateBillProcedure, svc.CreateBill, opts...)
	listBillsHandler := connect.NewUnaryHandler(BillServiceListBillsProcedure, svc.ListBills, opts...)
	getBillHandler := connect.NewUnaryHandler(BillServiceGetBillProcedure, svc.GetBill, opts...)
	deleteBillHandler := connect.NewUnaryHandler(BillServiceDeleteBillProcedure, svc.DeleteBill, opts...)
	getMonthlyReportHandler := connect.NewUnaryHandler(BillServiceGetMonthlyReportProcedure, svc.GetMonthlyReport, opts...)
	return "/" + BillServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BillServiceCreateBillProcedure:
			createBillHandler.ServeHTTP(w, r)
		case BillServiceListBillsProcedure:
			listBillsHandler.ServeHTTP(w, r)
		case BillServiceGetBillProcedure:
			getBillHandler.ServeHTTP(w, r)
		case BillServiceDeleteBillProcedure:
			deleteBillHandler.ServeHTTP(w, r)
		case BillServiceGetMonthlyReportProcedure:
			getMonthlyReportHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// BillServiceClient is a client for BillService.
type BillServiceClient interface {
	CreateBill(context.Context, *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error)
	ListBills(context.Context, *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error)
	GetBill(context.Context, *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error)
	DeleteBill(context.Context, *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error)
	GetMonthlyReport(context.Context, *connect.Request[api.GetMonthlyReportRequest]) (*connect.Response[api.GetMonthlyReportResponse], error)
}

type billServiceClient struct {
	createBill       *connect.Client[api.CreateBillRequest, api.CreateBillResponse]
	listBills        *connect.Client[api.ListBillsRequest, api.ListBillsResponse]
	getBill          *connect.Client[api.GetBillRequest, api.GetBillResponse]
	deleteBill       *connect.Client[api.DeleteBillRequest, api.DeleteBillResponse]
	getMonthlyReport *connect.Client[api.GetMonthlyReportRequest, api.GetMonthlyReportResponse]
}

// NewBillServiceClient returns a client for the BillService served at baseURL.
func NewBillServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BillServiceClient {
	opts = clientOptions(opts)
	return &billServiceClient{
		createBill:       connect.NewClient[api.CreateBillRequest, api.CreateBillResponse](httpClient, baseURL+BillServiceCreateBillProcedure, opts...),
		listBills:        connect.NewClient[api.ListBillsRequest, api.ListBillsResponse](httpClient, baseURL+BillServiceListBillsProcedure, opts...),
		getBill:          connect.NewClient[api.GetBillRequest, api.GetBillResponse](httpClient, baseURL+BillServiceGetBillProcedure, opts...),
		deleteBill:       connect.NewClient[api.DeleteBillRequest, api.DeleteBillResponse](httpClient, baseURL+BillServiceDeleteBillProcedure, opts...),
		getMonthlyReport: connect.NewClient[api.GetMonthlyReportRequest, api.GetMonthlyReportResponse](httpClient, baseURL+BillServiceGetMonthlyReportProcedure, opts...),
	}
}

func (c *billServiceClient) CreateBill(ctx context.Context, req *connect.Request[api.CreateBillRequest]) (*connect.Response[api.CreateBillResponse], error) {
	return c.createBill.CallUnary(ctx, req)
}

func (c *billServiceClient) ListBills(ctx context.Context, req *connect.Request[api.ListBillsRequest]) (*connect.Response[api.ListBillsResponse], error) {
	return c.listBills.CallUnary(ctx, req)
}

func (c *billServiceClient) GetBill(ctx context.Context, req *connect.Request[api.GetBillRequest]) (*connect.Response[api.GetBillResponse], error) {
	return c.getBill.CallUnary(ctx, req)
}

func (c *billServiceClient) DeleteBill(ctx context.Context, req *connect.Request[api.DeleteBillRequest]) (*connect.Response[api.DeleteBillResponse], error) {
	return c.deleteBill.CallUnary(ctx, req)
}

func (c *billServiceClient) GetMonthlyReport(ctx context.Context, req *connect.Request[api.GetMonthlyReportRequest]) (*connect.Response[api.GetMonthlyReportResponse], error) {
	return c.getMonthlyReport.CallUnary(ctx, req)
}

package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/pkg/api"
)

// AdminServiceName is the fully-qualified name of the AdminService service.
const AdminServiceName = "billdesk.v1.AdminService"

// Procedure paths of the AdminService RPCs.
const (
	AdminServiceListUsersProcedure  = "/billdesk.v1.AdminService/ListUsers"
	AdminServiceCreateUserProcedure = "/billdesk.v1.AdminService/CreateUser"
	AdminServiceUpdateUserProcedure = "/billdesk.v1.AdminService/UpdateUser"
	AdminServiceDeleteUserProcedure = "/billdesk.v1.AdminService/DeleteUser"
)

// AdminServiceHandler is implemented by the server side of AdminService.
type AdminServiceHandler interface {
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	UpdateUser(context.Context, *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error)
	DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error)
}

// NewAdminServiceHandler builds an HTTP handler from svc. It returns the path to
// mount it on.
func NewAdminServiceHandler(svc AdminServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	listUsersHandler := connect.NewUnaryHandler(AdminServiceListUsersProcedure, svc.ListUsers, opts...)
	createUserHandler := connect.NewUnaryHandler(AdminServiceCreateUserProcedure, svc.CreateUser, opts...)
	updateUserHandler := connect.NewUnaryHandler(AdminServiceUpdateUserProcedure, svc.UpdateUser, opts...)
	deleteUserHandler := connect.NewUnaryHandler(AdminServiceDeleteUserProcedure, svc.DeleteUser, opts...)
	return "/" + AdminServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case AdminServiceListUsersProcedure:
			listUsersHandler.ServeHTTP(w, r)
		case AdminServiceCreateUserProcedure:
			createUserHandler.ServeHTTP(w, r)
		case AdminServiceUpdateUserProcedure:
			updateUserHandler.ServeHTTP(w, r)
		case AdminServiceDeleteUserProcedure:
			deleteUserHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// AdminServiceClient is a client for AdminService.
type AdminServiceClient interface {
	ListUsers(context.Context, *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error)
	CreateUser(context.Context, *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error)
	UpdateUser(context.Context, *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error)
	DeleteUser(context.Context, *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error)
}

type adminServiceClient struct {
	listUsers  *connect.Client[api.ListUsersRequest, api.ListUsersResponse]
	createUser *connect.Client[api.CreateUserRequest, api.CreateUserResponse]
	updateUser *connect.Client[api.UpdateUserRequest, api.UpdateUserResponse]
	deleteUser *connect.Client[api.DeleteUserRequest, api.DeleteUserResponse]
}

// NewAdminServiceClient returns a client for the AdminService served at baseURL.
func NewAdminServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AdminServiceClient {
	opts = clientOptions(opts)
	return &adminServiceClient{
		listUsers:  connect.NewClient[api.ListUsersRequest, api.ListUsersResponse](httpClient, baseURL+AdminServiceListUsersProcedure, opts...),
		createUser: connect.NewClient[api.CreateUserRequest, api.CreateUserResponse](httpClient, baseURL+AdminServiceCreateUserProcedure, opts...),
		updateUser: connect.NewClient[api.UpdateUserRequest, api.UpdateUserResponse](httpClient, baseURL+AdminServiceUpdateUserProcedure, opts...),
		deleteUser: connect.NewClient[api.DeleteUserRequest, api.DeleteUserResponse](httpClient, baseURL+AdminServiceDeleteUserProcedure, opts...),
	}
}

func (c *adminServiceClient) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	return c.listUsers.CallUnary(ctx, req)
}

func (c *adminServiceClient) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	return c.createUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) UpdateUser(ctx context.Context, req *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error) {
	return c.updateUser.CallUnary(ctx, req)
}

func (c *adminServiceClient) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error) {
	return c.deleteUser.CallUnary(ctx, req)
}

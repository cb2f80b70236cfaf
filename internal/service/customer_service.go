package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/samber/lo"

	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// CustomerService implements the Connect CustomerService.
type CustomerService struct {
	customers *billing.Customers
}

var _ apiconnect.CustomerServiceHandler = (*CustomerService)(nil)

func NewCustomerService(customers *billing.Customers) *CustomerService {
	return &CustomerService{customers: customers}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *connect.Request[api.CreateCustomerRequest]) (*connect.Response[api.CreateCustomerResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	customer, err := s.customers.Create(ctx, ownerID, billing.CustomerInput{
		Name:    req.Msg.Name,
		Phone:   req.Msg.Phone,
		Email:   req.Msg.Email,
		Address: req.Msg.Address,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CreateCustomerResponse{Customer: toAPICustomer(customer)}), nil
}

func (s *CustomerService) ListCustomers(ctx context.Context, req *connect.Request[api.ListCustomersRequest]) (*connect.Response[api.ListCustomersResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := s.customers.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.ListCustomersResponse{
		Customers: lo.Map(customers, func(c *models.Customer, _ int) *api.Customer { return toAPICustomer(c) }),
	}), nil
}

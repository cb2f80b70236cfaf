package service

import (
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/internal/auth"
	"github.com/mmynk/billdesk/internal/metrics"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/sentry"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// Handlers groups everything served under the API.
type Handlers struct {
	Bills     *BillService
	Profiles  *ProfileService
	Customers *CustomerService
	Auth      *AuthService
	Admin     *AdminService
	Files     *FileHandlers
}

// MountOptions are the cross-cutting pieces every route is wrapped with.
// Metrics, Sentry and Limiter may be nil.
type MountOptions struct {
	JWT     *auth.JWTManager
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Sentry  *sentry.Service
	Limiter *middleware.RateLimiter
}

// Mount registers all Connect services and plain HTTP routes on mux.
func (h *Handlers) Mount(mux *http.ServeMux, o MountOptions) {
	logging := middleware.LoggingInterceptor(o.Logger, o.Metrics)
	errs := middleware.ErrorInterceptor(o.Sentry)

	owner := connect.WithInterceptors(logging, middleware.RequireAuth(o.JWT), errs)
	mux.Handle(apiconnect.NewBillServiceHandler(h.Bills, owner))
	mux.Handle(apiconnect.NewProfileServiceHandler(h.Profiles, owner))
	mux.Handle(apiconnect.NewCustomerServiceHandler(h.Customers, owner))

	authInterceptors := []connect.Interceptor{logging}
	if o.Limiter != nil {
		authInterceptors = append(authInterceptors, o.Limiter.Interceptor(
			apiconnect.AuthServiceLoginProcedure,
			apiconnect.AuthServiceRegisterProcedure,
		))
	}
	authInterceptors = append(authInterceptors, middleware.OptionalAuth(o.JWT), errs)
	mux.Handle(apiconnect.NewAuthServiceHandler(h.Auth, connect.WithInterceptors(authInterceptors...)))

	admin := connect.WithInterceptors(logging, middleware.RequireAuth(o.JWT), middleware.RequireAdmin(), errs)
	mux.Handle(apiconnect.NewAdminServiceHandler(h.Admin, admin))

	h.Files.Register(mux, func(next http.Handler) http.Handler {
		return middleware.HTTPLogging(o.Logger)(middleware.HTTPAuth(o.JWT)(next))
	})
}

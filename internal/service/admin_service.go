package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/samber/lo"

	"github.com/mmynk/billdesk/internal/auth"
	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/internal/models"
	"github.com/mmynk/billdesk/internal/storage"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// AdminService implements the Connect AdminService. Handlers are mounted
// behind RequireAuth and RequireAdmin.
type AdminService struct {
	users         storage.UserStore
	authenticator *auth.PasswordAuthenticator
	logger        *slog.Logger
}

var _ apiconnect.AdminServiceHandler = (*AdminService)(nil)

func NewAdminService(users storage.UserStore, authenticator *auth.PasswordAuthenticator, logger *slog.Logger) *AdminService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminService{users: users, authenticator: authenticator, logger: logger}
}

func (s *AdminService) ListUsers(ctx context.Context, req *connect.Request[api.ListUsersRequest]) (*connect.Response[api.ListUsersResponse], error) {
	if !isAdmin(ctx) {
		return nil, errAdminOnly()
	}
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, ierr.WithError(err).WithHint("Could not list users").Mark(ierr.ErrPersistence)
	}
	return connect.NewResponse(&api.ListUsersResponse{
		Users: lo.Map(users, func(u *models.User, _ int) *api.User { return toAPIUser(u) }),
	}), nil
}

func (s *AdminService) CreateUser(ctx context.Context, req *connect.Request[api.CreateUserRequest]) (*connect.Response[api.CreateUserResponse], error) {
	if !isAdmin(ctx) {
		return nil, errAdminOnly()
	}
	role := models.RoleUser
	if req.Msg.Role != "" {
		role = models.Role(req.Msg.Role)
	}
	if !role.Valid() {
		return nil, invalidRole(role)
	}

	user, err := s.authenticator.CreateWithRole(ctx, req.Msg.Username, req.Msg.DisplayName, req.Msg.Password, role)
	if err != nil {
		return nil, authError(err)
	}
	s.logger.Info("User created by admin",
		"admin_id", middleware.GetUserID(ctx),
		"user_id", user.ID,
		"username", user.Username,
		"role", user.Role,
	)
	return connect.NewResponse(&api.CreateUserResponse{User: toAPIUser(user)}), nil
}

func (s *AdminService) UpdateUser(ctx context.Context, req *connect.Request[api.UpdateUserRequest]) (*connect.Response[api.UpdateUserResponse], error) {
	if !isAdmin(ctx) {
		return nil, errAdminOnly()
	}
	msg := req.Msg
	if msg.Username == nil && msg.DisplayName == nil && msg.Role == nil && msg.Password == nil {
		return nil, ierr.NewError("empty user update").
			WithHint("Nothing to update").
			Mark(ierr.ErrValidation)
	}

	user, err := s.users.GetUserByID(ctx, msg.ID)
	if err != nil {
		return nil, userStoreError(err)
	}

	if msg.Username != nil {
		username := auth.NormalizeUsername(*msg.Username)
		if err := auth.ValidateUsername(username); err != nil {
			return nil, authError(err)
		}
		user.Username = username
	}
	if msg.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*msg.DisplayName)
	}
	if msg.Role != nil {
		role := models.Role(*msg.Role)
		if !role.Valid() {
			return nil, invalidRole(role)
		}
		if user.ID == middleware.GetUserID(ctx) && role != models.RoleAdmin {
			return nil, ierr.NewError("admin demoting itself").
				WithHint("You cannot remove your own admin role").
				Mark(ierr.ErrValidation)
		}
		user.Role = role
	}
	if msg.Password != nil {
		if err := s.authenticator.ValidateCredential(*msg.Password); err != nil {
			return nil, authError(err)
		}
		hashed, err := auth.HashPassword(*msg.Password)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
		}
		user.PasswordHash = hashed
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, userStoreError(err)
	}
	s.logger.Info("User updated by admin", "admin_id", middleware.GetUserID(ctx), "user_id", user.ID)
	return connect.NewResponse(&api.UpdateUserResponse{User: toAPIUser(user)}), nil
}

func (s *AdminService) DeleteUser(ctx context.Context, req *connect.Request[api.DeleteUserRequest]) (*connect.Response[api.DeleteUserResponse], error) {
	if !isAdmin(ctx) {
		return nil, errAdminOnly()
	}
	if req.Msg.ID == middleware.GetUserID(ctx) {
		return nil, ierr.NewError("admin deleting itself").
			WithHint("You cannot delete your own account").
			Mark(ierr.ErrValidation)
	}
	if err := s.users.DeleteUser(ctx, req.Msg.ID); err != nil {
		return nil, userStoreError(err)
	}
	s.logger.Info("User deleted by admin", "admin_id", middleware.GetUserID(ctx), "user_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteUserResponse{}), nil
}

func errAdminOnly() error {
	return ierr.NewError("admin role required").
		WithHint("Admin access required").
		Mark(ierr.ErrPermissionDenied)
}

func invalidRole(role models.Role) error {
	return ierr.NewErrorf("unknown role %q", role).
		WithHint("Role must be admin or user").
		Mark(ierr.ErrValidation)
}

func userStoreError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ierr.WithError(err).WithHint("User not found").Mark(ierr.ErrNotFound)
	case errors.Is(err, storage.ErrUsernameTaken):
		return ierr.WithError(err).WithHint("User already exists").Mark(ierr.ErrConflict)
	default:
		return ierr.WithError(err).WithHint("Could not update users, please retry").Mark(ierr.ErrPersistence)
	}
}

package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/billdesk/internal/billing"
	"github.com/mmynk/billdesk/internal/middleware"
	"github.com/mmynk/billdesk/pkg/api"
	"github.com/mmynk/billdesk/pkg/api/apiconnect"
)

// ProfileService implements the Connect ProfileService.
type ProfileService struct {
	profiles *billing.Profiles
}

var _ apiconnect.ProfileServiceHandler = (*ProfileService)(nil)

func NewProfileService(profiles *billing.Profiles) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// GetProfile returns the caller's business profile, with defaults if none
// was saved yet.
func (s *ProfileService) GetProfile(ctx context.Context, req *connect.Request[api.GetProfileRequest]) (*connect.Response[api.GetProfileResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetProfileResponse{Profile: toAPIProfile(profile)}), nil
}

// UpdateProfile creates or updates the caller's business profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, req *connect.Request[api.UpdateProfileRequest]) (*connect.Response[api.UpdateProfileResponse], error) {
	ownerID, err := middleware.CurrentOwner(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := s.profiles.Upsert(ctx, ownerID, toProfileInput(req.Msg), nil)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.UpdateProfileResponse{Profile: toAPIProfile(profile)}), nil
}

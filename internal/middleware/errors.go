package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	ierr "github.com/mmynk/billdesk/internal/errors"
	"github.com/mmynk/billdesk/internal/sentry"
)

// ErrorInterceptor converts handler errors into Connect errors carrying the
// client-facing message, and reports server-side failures.
func ErrorInterceptor(reporter *sentry.Service) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if err == nil {
				return resp, nil
			}
			var ce *connect.Error
			if errors.As(err, &ce) {
				return nil, err
			}
			if ierr.HTTPStatus(err) >= http.StatusInternalServerError {
				reporter.CaptureException(ctx, err, map[string]string{
					"procedure": req.Spec().Procedure,
					"user_id":   GetUserID(ctx),
				})
			}
			return nil, ierr.ToConnect(err)
		}
	}
}

// WriteError writes err as a JSON body with its HTTP status.
func WriteError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ierr.HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": ierr.DisplayMessage(err)})
}

// Package errors defines the error categories shared by every layer and maps
// them onto transport status codes. Import it as ierr.
package errors

import (
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
)

// Category sentinels. Errors are marked with one of these via the builder.
var (
	ErrValidation       = newCategory(CodeValidation, "validation error")
	ErrUnauthorized     = newCategory(CodeUnauthorized, "unauthorized")
	ErrPermissionDenied = newCategory(CodePermissionDenied, "permission denied")
	ErrNotFound         = newCategory(CodeNotFound, "resource not found")
	ErrConflict         = newCategory(CodeConflict, "conflict")
	ErrPersistence      = newCategory(CodePersistence, "persistence error")
	ErrRender           = newCategory(CodeRender, "render error")
	ErrDispatch         = newCategory(CodeDispatch, "dispatch error")
	ErrRateLimited      = newCategory(CodeRateLimited, "too many requests")
	ErrSystem           = newCategory(CodeSystem, "system error")
)

const (
	CodeValidation       = "validation_error"
	CodeUnauthorized     = "unauthorized"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeConflict         = "conflict"
	CodePersistence      = "persistence_error"
	CodeRender           = "render_error"
	CodeDispatch         = "dispatch_error"
	CodeRateLimited      = "rate_limited"
	CodeSystem           = "system_error"
)

var categories = []*Category{
	ErrValidation, ErrUnauthorized, ErrPermissionDenied, ErrNotFound, ErrConflict,
	ErrPersistence, ErrRender, ErrDispatch, ErrRateLimited, ErrSystem,
}

var connectCodes = map[*Category]connect.Code{
	ErrValidation:       connect.CodeInvalidArgument,
	ErrUnauthorized:     connect.CodeUnauthenticated,
	ErrPermissionDenied: connect.CodePermissionDenied,
	ErrNotFound:         connect.CodeNotFound,
	ErrConflict:         connect.CodeAborted,
	ErrPersistence:      connect.CodeUnavailable,
	ErrRender:           connect.CodeInternal,
	ErrDispatch:         connect.CodeInternal,
	ErrRateLimited:      connect.CodeResourceExhausted,
	ErrSystem:           connect.CodeInternal,
}

var httpStatuses = map[*Category]int{
	ErrValidation:       http.StatusBadRequest,
	ErrUnauthorized:     http.StatusUnauthorized,
	ErrPermissionDenied: http.StatusForbidden,
	ErrNotFound:         http.StatusNotFound,
	ErrConflict:         http.StatusConflict,
	ErrPersistence:      http.StatusServiceUnavailable,
	ErrRender:           http.StatusInternalServerError,
	ErrDispatch:         http.StatusBadGateway,
	ErrRateLimited:      http.StatusTooManyRequests,
	ErrSystem:           http.StatusInternalServerError,
}

// Category is a marker error identifying a class of failure.
type Category struct {
	Code    string
	Message string
}

func (c *Category) Error() string {
	return fmt.Sprintf("%s: %s", c.Code, c.Message)
}

func newCategory(code, message string) *Category {
	return &Category{Code: code, Message: message}
}

// CategoryOf returns the category err was marked with, or ErrSystem.
func CategoryOf(err error) *Category {
	for _, c := range categories {
		if errors.Is(err, c) {
			return c
		}
	}
	return ErrSystem
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }
func IsNotFound(err error) bool   { return errors.Is(err, ErrNotFound) }
func IsConflict(err error) bool   { return errors.Is(err, ErrConflict) }

// DisplayMessage is the message safe to show a client: the first hint if
// the error carries one, the category message otherwise.
func DisplayMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	return CategoryOf(err).Message
}

// ToConnect converts err into a *connect.Error carrying the display message.
// Errors that already are connect errors pass through.
func ToConnect(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	cat := CategoryOf(err)
	return connect.NewError(connectCodes[cat], errors.New(DisplayMessage(err)))
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	return httpStatuses[CategoryOf(err)]
}

// Package server provides the HTTP gateway for the career network app.
package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/career-network/internal/backend"
	"github.com/jonathan/career-network/internal/resume"
	"github.com/jonathan/career-network/internal/schemas"
	"github.com/jonathan/career-network/internal/scratch"
	"github.com/jonathan/career-network/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// errSessionTokenRequired is returned when a body names a session but the
// request carries no token.
var errSessionTokenRequired = fmt.Errorf("%w: a session token is required to read session data", session.ErrInvalidToken)

// errNoUpstream is returned when a route needs the service URL and none is set.
var errNoUpstream = errors.New("upstream service URL is not configured")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		fieldErrs     validator.ValidationErrors
		schemaErr     *schemas.ValidationError
		typeErr       *resume.UnsupportedTypeError
		tooLarge      *http.MaxBytesError
		upstream      *backend.Error
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validationErr), errors.As(err, &fieldErrs),
		errors.As(err, &schemaErr), errors.As(err, &typeErr),
		errors.Is(err, scratch.ErrInvalidFilename):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, session.ErrNotFound), errors.Is(err, scratch.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &upstream):
		if upstream.Transport() {
			return http.StatusBadGateway
		}
		return upstream.Status
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage renders err for a client. Field validation failures are
// listed by field name.
func errorMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		parts := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			parts = append(parts, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
		return "validation failed: " + strings.Join(parts, ", ")
	}

	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		return schemaErr.Summary()
	}
	return err.Error()
}

package domainerr

import (
	"errors"
	"net/http"
)

// HTTPStatus maps a domain error to the status code controllers respond with.
// Unknown errors map to 500.
func HTTPStatus(err error) int {
	var (
		validation ValidationError
		notFound   NotFoundError
		conflict   ConflictError
		transition StateTransitionError
		window     NotAvailableError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &validation), errors.As(err, &transition):
		return http.StatusBadRequest
	case errors.As(err, &window):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

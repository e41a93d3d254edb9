package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Picces04/ToyStore-Client/internal/backend"
	"github.com/Picces04/ToyStore-Client/internal/blog"
	"github.com/Picces04/ToyStore-Client/internal/catalog"
	"github.com/Picces04/ToyStore-Client/internal/checkout"
	"github.com/Picces04/ToyStore-Client/internal/modal"
	"github.com/Picces04/ToyStore-Client/internal/session"
	"github.com/Picces04/ToyStore-Client/internal/storefront"
	"github.com/go-chi/render"
)

var (
	ErrBadRequest              = errors.New("malformed request body")
	ErrListingQuickAddDisabled = errors.New("adding from the product listing is disabled")
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, data)
}

func respondJSONError(w http.ResponseWriter, r *http.Request, message string, status int) {
	respondJSON(w, r, status, errorResponse{Error: message})
}

// respondErr maps an operation error onto a status code.
func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var validation *checkout.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, r, http.StatusUnprocessableEntity, errorResponse{Error: "invalid checkout form", Fields: validation.Fields})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	respondJSONError(w, r, err.Error(), status)
}

func statusFor(err error) int {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return http.StatusNotFound
	}
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, catalog.ErrPageOutOfRange),
		errors.Is(err, catalog.ErrInvalidPriceRange),
		errors.Is(err, catalog.ErrUnknownSort),
		errors.Is(err, blog.ErrPageOutOfRange),
		errors.Is(err, modal.ErrImageOutOfRange),
		errors.Is(err, session.ErrEmptyToken):
		return http.StatusBadRequest
	case errors.Is(err, storefront.ErrNotInView),
		errors.Is(err, backend.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, modal.ErrNoSelection),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, ErrListingQuickAddDisabled):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr),
		errors.Is(err, backend.ErrUnsuccessful),
		errors.Is(err, backend.ErrInvalidData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return errors.Join(ErrBadRequest, err)
	}
	return nil
}

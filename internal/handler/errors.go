// Package handler exposes the HTTP surface. Handlers parse and respond;
// all business rules, authorization included, live in the services.
package handler

import (
	"errors"
	"net/http"

	"taskhive/internal/domain"
	"taskhive/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Typed errors
// carry their own status; sentinels map here.
func handleError(w http.ResponseWriter, err error) {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), err.Error())
		return
	}

	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNothingToUpdate),
		errors.Is(err, domain.ErrInvalidFieldConfig),
		errors.Is(err, domain.ErrDropdownOptionsMissing),
		errors.Is(err, domain.ErrInvalidFieldDefault),
		errors.Is(err, domain.ErrInvalidFieldValue),
		errors.Is(err, domain.ErrUnexpectedRole),
		errors.Is(err, domain.ErrUnexpectedFieldType):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInactive):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

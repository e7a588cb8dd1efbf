package handler

import (
	"errors"
	"net/http"

	"cartable/internal/domain"
	"cartable/internal/httputil"
)

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	var transportErr *domain.TransportError
	var httpErr domain.HTTPError

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		httputil.RespondError(w, http.StatusUnauthorized, "not authenticated")
	case errors.As(err, &transportErr):
		var extras map[string]interface{}
		if transportErr.Status != 0 {
			extras = map[string]interface{}{"upstream_status": transportErr.Status}
		}
		httputil.RespondErrorWithExtras(w, transportErr.StatusCode(), transportErr.Error(), extras)
	case errors.Is(err, domain.ErrFormat):
		httputil.RespondError(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotExpandable):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

package http

import (
	"errors"
	"log/slog"
	"net/http"

	"jobauth/internal/domain"
	"jobauth/internal/httpx"
	"jobauth/internal/service/impl"
)

// writeError is the single place service failures become HTTP. Typed
// errors map to the envelope; anything unrecognized is a 500 with no
// internal detail leaked.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		httpx.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrTwoFactorEnabled):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTwoFactorRequired):
		httpx.Error(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrAccountBlocked),
		errors.Is(err, domain.ErrAccountInactive):
		httpx.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrTwoFactorNotEnrolled),
		errors.Is(err, domain.ErrTwoFactorCode),
		errors.Is(err, impl.ErrEmptyCredential),
		errors.Is(err, impl.ErrPasswordLength),
		errors.Is(err, impl.ErrInvalidRole):
		httpx.Error(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("unhandled service error", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "internal server error")
	}
}

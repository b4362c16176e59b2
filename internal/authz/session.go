package authz

import (
	"log/slog"
	"net/http"
	"time"

	"jobauth/internal/httpx"
	"jobauth/internal/observability/metrics"
	obsmw "jobauth/internal/observability/middleware"
	"jobauth/internal/token"
)

const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// Session is the request-scoped gate every authenticated route passes
// through. It validates the access token. When the access cookie is
// absent it falls back to the refresh token and writes a replacement
// access cookie. A present-but-invalid access token is a hard 403 with
// no fallback; clients renew by omitting the access cookie.
type Session struct {
	codec         *token.Codec
	issuer        *token.Issuer
	cookieMaxAge  time.Duration
	secureCookies bool
}

func NewSession(codec *token.Codec, issuer *token.Issuer, cookieMaxAge time.Duration, secureCookies bool) *Session {
	return &Session{
		codec:         codec,
		issuer:        issuer,
		cookieMaxAge:  cookieMaxAge,
		secureCookies: secureCookies,
	}
}

func (s *Session) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := obsmw.RequestIDFromContext(r.Context())

		// The refresh token is the mandatory anchor of a session; an
		// access token alone is never sufficient.
		refreshCookie, err := r.Cookie(RefreshCookie)
		if err != nil {
			metrics.SessionRefreshTotal.WithLabelValues("anchor", "failure").Inc()
			httpx.Error(w, http.StatusUnauthorized, "unauthorized: no refresh token")
			return
		}

		if accessCookie, err := r.Cookie(AccessCookie); err == nil {
			plain, err := s.codec.Decrypt(accessCookie.Value)
			if err == nil {
				if p, err := s.issuer.VerifyAccess(plain); err == nil {
					metrics.SessionRefreshTotal.WithLabelValues("access", "success").Inc()
					next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
					return
				}
			}
			metrics.SessionRefreshTotal.WithLabelValues("access", "failure").Inc()
			slog.Warn("invalid access token", "request_id", reqID)
			httpx.Error(w, http.StatusForbidden, "unauthorized: invalid access token")
			return
		}

		plain, err := s.codec.Decrypt(refreshCookie.Value)
		if err != nil {
			metrics.SessionRefreshTotal.WithLabelValues("refresh", "failure").Inc()
			httpx.Error(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}
		p, err := s.issuer.VerifyRefresh(plain)
		if err != nil {
			metrics.SessionRefreshTotal.WithLabelValues("refresh", "failure").Inc()
			slog.Warn("refresh token rejected", "request_id", reqID, "error", err)
			httpx.Error(w, http.StatusUnauthorized, "invalid or expired refresh token")
			return
		}

		// Mint a replacement access token from the refresh claims; the
		// issuer stamps fresh iat/exp.
		access, err := s.issuer.IssueAccess(*p)
		if err != nil {
			metrics.SessionRefreshTotal.WithLabelValues("refresh", "failure").Inc()
			httpx.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
		enc, err := s.codec.Encrypt(access)
		if err != nil {
			metrics.SessionRefreshTotal.WithLabelValues("refresh", "failure").Inc()
			httpx.Error(w, http.StatusInternalServerError, "internal server error")
			return
		}
		s.SetAccessCookie(w, enc)

		metrics.SessionRefreshTotal.WithLabelValues("refresh", "success").Inc()
		metrics.TokensIssuedTotal.WithLabelValues("session_refresh", "success").Inc()
		slog.Info("access token renewed", "request_id", reqID, "user_id", p.UserID)

		next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
	})
}

// SetAccessCookie writes an already-encrypted access token. The cookie
// outlives the embedded token's 30-minute expiry on purpose; token
// verification never trusts cookie presence.
func (s *Session) SetAccessCookie(w http.ResponseWriter, encrypted string) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   int(s.cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Session) SetRefreshCookie(w http.ResponseWriter, encrypted string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    encrypted,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

func (s *Session) ClearCookies(w http.ResponseWriter) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secureCookies,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

package http

import (
	"encoding/json"
	"net/http"
	"time"

	"jobauth/internal/authz"
	"jobauth/internal/domain"
	"jobauth/internal/dto"
	"jobauth/internal/httpx"
	"jobauth/internal/service"
	"jobauth/internal/token"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	security   service.SecurityService
	twoFactor  service.TwoFactorService
	session    *authz.Session
	codec      *token.Codec
	refreshTTL time.Duration
}

func NewHandler(
	security service.SecurityService,
	twoFactor service.TwoFactorService,
	session *authz.Session,
	codec *token.Codec,
	refreshTTL time.Duration,
) *Handler {
	return &Handler{
		security:   security,
		twoFactor:  twoFactor,
		session:    session,
		codec:      codec,
		refreshTTL: refreshTTL,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	cred, err := h.security.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, dto.RegisterResponse{
		UserID: cred.UserID.String(),
		Email:  cred.Email,
		Role:   string(cred.Role),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	toks, err := h.security.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	encAccess, err := h.codec.Encrypt(toks.AccessToken)
	if err != nil {
		writeError(w, err)
		return
	}
	encRefresh, err := h.codec.Encrypt(toks.RefreshToken)
	if err != nil {
		writeError(w, err)
		return
	}
	h.session.SetAccessCookie(w, encAccess)
	h.session.SetRefreshCookie(w, encRefresh, h.refreshTTL)

	httpx.Message(w, http.StatusOK, "login successful")
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.ClearCookies(w)
	httpx.Message(w, http.StatusOK, "logged out")
}

func (h *Handler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req dto.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.security.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "password reset link sent, please check your email")
}

func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req dto.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.security.UpdatePassword(r.Context(), p.UserID, req.OldPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "password updated")
}

func (h *Handler) EnrollTwoFactor(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	enr, err := h.twoFactor.Enroll(r.Context(), p.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, enr)
}

func (h *Handler) ConfirmTwoFactor(w http.ResponseWriter, r *http.Request) {
	p, ok := authz.PrincipalFrom(r.Context())
	if !ok {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req dto.TwoFactorConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.twoFactor.Confirm(r.Context(), p.UserID, req.Code); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "two-factor verification successful")
}

func (h *Handler) GetSecurity(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid userId")
		return
	}
	cred, err := h.security.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, toSecurityView(cred))
}

func (h *Handler) CountSecurity(w http.ResponseWriter, r *http.Request) {
	n, err := h.security.Count(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"count": n})
}

func (h *Handler) SetBlocked(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid userId")
		return
	}
	var req dto.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "bad request")
		return
	}
	if err := h.security.SetBlocked(r.Context(), userID, req.Blocked); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "account updated")
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid userId")
		return
	}
	if err := h.security.VerifyEmail(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "email verified")
}

func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid userId")
		return
	}
	if err := h.security.SoftDelete(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "account deleted")
}

func toSecurityView(c *domain.Credential) dto.SecurityView {
	return dto.SecurityView{
		UserID:           c.UserID.String(),
		Email:            c.Email,
		Role:             string(c.Role),
		Status:           string(c.Status),
		IsEmailVerified:  c.IsEmailVerified,
		IsPasswordReset:  c.IsPasswordReset,
		IsAccountBlocked: c.IsAccountBlocked,
		IsAccountDeleted: c.IsAccountDeleted,
		IsTwoFactorAuth:  c.IsTwoFactorAuth,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

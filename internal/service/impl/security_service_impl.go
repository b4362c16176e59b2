package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobauth/internal/domain"
	"jobauth/internal/dto"
	"jobauth/internal/notify"
	"jobauth/internal/observability/metrics"
	"jobauth/internal/service"
	"jobauth/internal/store"
	"jobauth/internal/token"

	"github.com/google/uuid"
)

// credentialStore is the slice of the document store this service
// touches; *store.CredentialStore satisfies it.
type credentialStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Credential, error)
	GetByEmail(ctx context.Context, email string) (*domain.Credential, error)
	Count(ctx context.Context) (int64, error)
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error
	SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error
	SetEmailVerified(ctx context.Context, userID uuid.UUID) error
	SoftDelete(ctx context.Context, userID uuid.UUID) error
	RecordLoginFailure(ctx context.Context, userID uuid.UUID, at time.Time) error
	ResetLoginFailures(ctx context.Context, userID uuid.UUID) error
}

type SecurityServiceImpl struct {
	store           *store.Store
	creds           credentialStore
	passwords       service.PasswordService
	issuer          *token.Issuer
	notifier        notify.Notifier
	clock           token.Clock
	maxFailedLogins int
	resetBaseURL    string
}

type SecurityConfig struct {
	MaxFailedLogins  int
	PasswordResetURL string
}

func NewSecurityServiceImpl(
	st *store.Store,
	passwords service.PasswordService,
	issuer *token.Issuer,
	notifier notify.Notifier,
	clock token.Clock,
	cfg SecurityConfig,
) *SecurityServiceImpl {
	if clock == nil {
		clock = token.SystemClock()
	}
	return &SecurityServiceImpl{
		store:           st,
		creds:           st.Credentials(),
		passwords:       passwords,
		issuer:          issuer,
		notifier:        notifier,
		clock:           clock,
		maxFailedLogins: cfg.MaxFailedLogins,
		resetBaseURL:    cfg.PasswordResetURL,
	}
}

func (s *SecurityServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*domain.Credential, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrEmptyCredential
	}
	if len(req.Password) < 8 {
		return nil, ErrPasswordLength
	}

	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	c := &domain.Credential{
		UserID:       uuid.New(),
		Email:        req.Email,
		Role:         role,
		Status:       domain.StatusActive,
		PasswordHash: hash,
	}

	// Check-then-create runs in one transaction so two racing
	// registrations for the same email cannot both pass the lookup.
	err = s.store.WithTx(ctx, func(tx *store.Store) error {
		creds := tx.Credentials()
		if _, err := creds.GetByEmail(ctx, req.Email); err == nil {
			return domain.ErrEmailTaken
		} else if !errors.Is(err, domain.ErrRecordNotFound) {
			return err
		}
		return creds.Create(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	slog.Info("credential record created", "user_id", c.UserID, "role", c.Role)
	return c, nil
}

func (s *SecurityServiceImpl) Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionTokens, error) {
	result := "failure"
	defer func() {
		metrics.AuthLoginsTotal.WithLabelValues(result).Inc()
	}()

	if req.Email == "" || req.Password == "" {
		return nil, ErrEmptyCredential
	}

	cred, err := s.creds.GetByEmail(ctx, req.Email)
	if err != nil {
		// Don't leak whether the email exists.
		return nil, domain.ErrInvalidCredentials
	}
	if cred.IsAccountDeleted {
		return nil, domain.ErrInvalidCredentials
	}
	if cred.IsAccountBlocked {
		return nil, domain.ErrAccountBlocked
	}
	if cred.Status != domain.StatusActive {
		return nil, domain.ErrAccountInactive
	}

	if !s.passwords.Verify(req.Password, cred.PasswordHash) {
		now := s.clock.Now()
		if err := s.creds.RecordLoginFailure(ctx, cred.UserID, now); err != nil {
			return nil, err
		}
		if s.maxFailedLogins > 0 && cred.FailedLoginCount+1 >= s.maxFailedLogins {
			if err := s.creds.SetBlocked(ctx, cred.UserID, true); err != nil {
				return nil, err
			}
			slog.Warn("account blocked after repeated login failures", "user_id", cred.UserID)
			return nil, domain.ErrAccountBlocked
		}
		return nil, domain.ErrInvalidCredentials
	}

	if cred.IsTwoFactorAuth {
		if req.TwoFactorCode == "" {
			return nil, domain.ErrTwoFactorRequired
		}
		if !validTOTP(req.TwoFactorCode, cred.TwoFactorSecret, s.clock.Now()) {
			return nil, domain.ErrTwoFactorCode
		}
	}

	if err := s.creds.ResetLoginFailures(ctx, cred.UserID); err != nil {
		return nil, err
	}

	p := domain.Principal{UserID: cred.UserID, Role: cred.Role}
	access, err := s.issuer.IssueAccess(p)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issuer.IssueRefresh(p)
	if err != nil {
		return nil, err
	}

	result = "success"
	metrics.TokensIssuedTotal.WithLabelValues("login", "success").Inc()
	slog.Info("login succeeded", "user_id", cred.UserID)

	return &dto.SessionTokens{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *SecurityServiceImpl) UpdatePassword(ctx context.Context, userID domain.UserID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrEmptyCredential
	}
	if len(newPassword) < 8 {
		return ErrPasswordLength
	}

	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.passwords.Verify(oldPassword, cred.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.creds.UpdatePasswordHash(ctx, userID, hash)
}

func (s *SecurityServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	cred, err := s.creds.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s?uid=%s", s.resetBaseURL, cred.UserID)
	return s.notifier.Send(ctx, cred.Email, link,
		"Reset password",
		"The link to reset your password:")
}

func (s *SecurityServiceImpl) VerifyEmail(ctx context.Context, userID domain.UserID) error {
	return s.creds.SetEmailVerified(ctx, userID)
}

func (s *SecurityServiceImpl) SetBlocked(ctx context.Context, userID domain.UserID, blocked bool) error {
	return s.creds.SetBlocked(ctx, userID, blocked)
}

func (s *SecurityServiceImpl) SoftDelete(ctx context.Context, userID domain.UserID) error {
	return s.creds.SoftDelete(ctx, userID)
}

func (s *SecurityServiceImpl) Get(ctx context.Context, userID domain.UserID) (*domain.Credential, error) {
	return s.creds.GetByUserID(ctx, userID)
}

func (s *SecurityServiceImpl) Count(ctx context.Context) (int64, error) {
	return s.creds.Count(ctx)
}

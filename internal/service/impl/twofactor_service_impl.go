package impl

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"time"

	"jobauth/internal/domain"
	"jobauth/internal/dto"
	"jobauth/internal/observability/metrics"
	"jobauth/internal/store"
	"jobauth/internal/token"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	totpSecretSize = 20 // 160-bit shared secret
	totpPeriod     = 30
	totpSkew       = 1 // ±1 time step absorbs modest clock drift
	qrSize         = 256
)

type twoFactorStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Credential, error)
	SetTwoFactorSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTwoFactor(ctx context.Context, userID uuid.UUID) error
}

type TwoFactorServiceImpl struct {
	creds      twoFactorStore
	clock      token.Clock
	issuerName string
}

func NewTwoFactorServiceImpl(st *store.Store, clock token.Clock, issuerName string) *TwoFactorServiceImpl {
	if clock == nil {
		clock = token.SystemClock()
	}
	return &TwoFactorServiceImpl{
		creds:      st.Credentials(),
		clock:      clock,
		issuerName: issuerName,
	}
}

// Enroll generates a fresh shared secret and a scannable provisioning
// URI. The secret is persisted through a conditional write, so an
// already-enabled account (or a concurrently winning enrollment) comes
// back as ErrTwoFactorEnabled and the active secret stays untouched.
func (s *TwoFactorServiceImpl) Enroll(ctx context.Context, userID domain.UserID) (*dto.TwoFactorEnrollment, error) {
	result := "failure"
	defer func() {
		metrics.TwoFactorAttemptsTotal.WithLabelValues("enroll", result).Inc()
	}()

	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cred.IsTwoFactorAuth {
		return nil, domain.ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuerName,
		AccountName: cred.Email,
		SecretSize:  totpSecretSize,
	})
	if err != nil {
		return nil, err
	}

	if err := s.creds.SetTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return nil, err
	}

	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	result = "success"
	slog.Info("two-factor enrollment started", "user_id", userID)

	return &dto.TwoFactorEnrollment{
		ProvisioningURI: key.String(),
		QRPNG:           buf.Bytes(),
	}, nil
}

// Confirm validates a one-time code against the pending secret and
// flips the enabled flag exactly once. Invalid codes leave the record
// unchanged.
func (s *TwoFactorServiceImpl) Confirm(ctx context.Context, userID domain.UserID, code string) error {
	result := "failure"
	defer func() {
		metrics.TwoFactorAttemptsTotal.WithLabelValues("confirm", result).Inc()
	}()

	cred, err := s.creds.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if cred.IsTwoFactorAuth {
		return domain.ErrTwoFactorEnabled
	}
	if cred.TwoFactorSecret == "" {
		return domain.ErrTwoFactorNotEnrolled
	}

	if !validTOTP(code, cred.TwoFactorSecret, s.clock.Now()) {
		return domain.ErrTwoFactorCode
	}

	if err := s.creds.EnableTwoFactor(ctx, userID); err != nil {
		return err
	}

	result = "success"
	slog.Info("two-factor auth enabled", "user_id", userID)
	return nil
}

func validTOTP(code, secret string, now time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, now, totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

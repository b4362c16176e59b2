package impl

import (
	"context"
	"errors"
	"testing"
	"time"

	"jobauth/internal/domain"
	"jobauth/internal/dto"
	"jobauth/internal/store"
	"jobauth/internal/token"
)

type recordingNotifier struct {
	sent []struct{ recipient, link, subject string }
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, recipient, link, subject, body string) error {
	n.sent = append(n.sent, struct{ recipient, link, subject string }{recipient, link, subject})
	return n.err
}

func newSecurityService(t *testing.T, st *store.Store, clock token.Clock) (*SecurityServiceImpl, *recordingNotifier, *token.Issuer) {
	t.Helper()
	issuer := token.NewIssuer(token.IssuerConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, clock)
	notifier := &recordingNotifier{}
	svc := NewSecurityServiceImpl(st, NewPasswordServiceBcrypt(), issuer, notifier, clock, SecurityConfig{
		MaxFailedLogins:  3,
		PasswordResetURL: "http://localhost:3000/reset-password",
	})
	return svc, notifier, issuer
}

func TestRegisterAndLogin(t *testing.T) {
	st := setupStore(t)
	clock := newFakeClock()
	svc, _, issuer := newSecurityService(t, st, clock)
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if cred.Role != domain.RoleUser {
		t.Fatalf("default role = %q, want user", cred.Role)
	}

	toks, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	p, err := issuer.VerifyAccess(toks.AccessToken)
	if err != nil {
		t.Fatalf("verify issued access token: %v", err)
	}
	if p.UserID != cred.UserID || p.Role != domain.RoleUser {
		t.Fatalf("claims mismatch: %+v", p)
	}
	if _, err := issuer.VerifyRefresh(toks.RefreshToken); err != nil {
		t.Fatalf("verify issued refresh token: %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "another-pass"})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterRejectsShortPasswordAndBadRole(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "short"}); !errors.Is(err, ErrPasswordLength) {
		t.Fatalf("expected ErrPasswordLength, got %v", err)
	}
	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long", Role: "root"}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestLoginWrongPasswordBlocksAfterThreshold(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
	// Third failure hits the threshold.
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "wrong"}); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked, got %v", err)
	}

	got, _ := st.Credentials().GetByUserID(ctx, cred.UserID)
	if !got.IsAccountBlocked || got.FailedLoginCount != 3 {
		t.Fatalf("block state wrong: %+v", got)
	}

	// Even the right password is rejected once blocked.
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long"}); !errors.Is(err, domain.ErrAccountBlocked) {
		t.Fatalf("expected ErrAccountBlocked after block, got %v", err)
	}
}

func TestLoginResetsFailureCount(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "wrong"}); err == nil {
		t.Fatalf("expected failure")
	}
	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long"}); err != nil {
		t.Fatalf("Login: %v", err)
	}

	got, _ := st.Credentials().GetByUserID(ctx, cred.UserID)
	if got.FailedLoginCount != 0 {
		t.Fatalf("failure count not reset: %d", got.FailedLoginCount)
	}
}

func TestLoginWithTwoFactorEnabled(t *testing.T) {
	st := setupStore(t)
	clock := newFakeClock()
	svc, _, _ := newSecurityService(t, st, clock)
	twofa := NewTwoFactorServiceImpl(st, clock, "jobboard")
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := twofa.Enroll(ctx, cred.UserID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	rec, _ := st.Credentials().GetByUserID(ctx, cred.UserID)
	if err := twofa.Confirm(ctx, cred.UserID, codeAt(t, rec.TwoFactorSecret, clock.now)); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// Password alone is no longer enough.
	_, err = svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long"})
	if !errors.Is(err, domain.ErrTwoFactorRequired) {
		t.Fatalf("expected ErrTwoFactorRequired, got %v", err)
	}

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long", TwoFactorCode: "000000"})
	if !errors.Is(err, domain.ErrTwoFactorCode) {
		t.Fatalf("expected ErrTwoFactorCode, got %v", err)
	}

	rec, _ = st.Credentials().GetByUserID(ctx, cred.UserID)
	if _, err := svc.Login(ctx, dto.LoginRequest{
		Email:         "a@example.com",
		Password:      "hunter2-long",
		TwoFactorCode: codeAt(t, rec.TwoFactorSecret, clock.now),
	}); err != nil {
		t.Fatalf("Login with TOTP: %v", err)
	}
}

func TestLoginSoftDeletedAccount(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := svc.SoftDelete(ctx, cred.UserID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "hunter2-long"}); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for deleted account, got %v", err)
	}
}

func TestUpdatePassword(t *testing.T) {
	st := setupStore(t)
	svc, _, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	cred, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.UpdatePassword(ctx, cred.UserID, "wrong-old", "new-password-1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.UpdatePassword(ctx, cred.UserID, "hunter2-long", "new-password-1"); err != nil {
		t.Fatalf("UpdatePassword: %v", err)
	}

	if _, err := svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "new-password-1"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	got, _ := st.Credentials().GetByUserID(ctx, cred.UserID)
	if !got.IsPasswordReset {
		t.Fatalf("is_password_reset not set")
	}
}

func TestRequestPasswordReset(t *testing.T) {
	st := setupStore(t)
	svc, notifier, _ := newSecurityService(t, st, newFakeClock())
	ctx := context.Background()

	if _, err := svc.Register(ctx, dto.RegisterRequest{Email: "a@example.com", Password: "hunter2-long"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.RequestPasswordReset(ctx, "a@example.com"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].recipient != "a@example.com" {
		t.Fatalf("notification not dispatched: %+v", notifier.sent)
	}

	if err := svc.RequestPasswordReset(ctx, "missing@example.com"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

package token

import (
	"errors"
	"testing"
	"time"

	"jobauth/internal/domain"

	"github.com/google/uuid"
)

type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time { return f.now }

func newTestIssuer(clock Clock) *Issuer {
	return NewIssuer(IssuerConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		AccessTTL:     30 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, clock)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(clock)

	p := domain.Principal{UserID: uuid.New(), Role: domain.RoleManager}
	tok, err := iss.IssueAccess(p)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	got, err := iss.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if got.UserID != p.UserID {
		t.Fatalf("userID mismatch: got %v want %v", got.UserID, p.UserID)
	}
	if got.Role != domain.RoleManager {
		t.Fatalf("role mismatch: got %v", got.Role)
	}
	if !got.IssuedAt.Equal(clock.now) {
		t.Fatalf("issued-at not stamped from clock: %v", got.IssuedAt)
	}
	if !got.ExpiresAt.Equal(clock.now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry: %v", got.ExpiresAt)
	}
}

func TestIssueStampsFreshLifetimes(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(clock)

	// Principal carries stale iat/exp from a verified refresh token;
	// the issuer must discard both.
	p := domain.Principal{
		UserID:    uuid.New(),
		Role:      domain.RoleUser,
		IssuedAt:  clock.now.Add(-6 * 24 * time.Hour),
		ExpiresAt: clock.now.Add(24 * time.Hour),
	}
	tok, err := iss.IssueAccess(p)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	got, err := iss.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if !got.IssuedAt.Equal(clock.now) || !got.ExpiresAt.Equal(clock.now.Add(30*time.Minute)) {
		t.Fatalf("stale lifetimes leaked into new token: iat=%v exp=%v", got.IssuedAt, got.ExpiresAt)
	}
}

func TestVerifyAccessExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(clock)

	tok, err := iss.IssueAccess(domain.Principal{UserID: uuid.New(), Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	clock.now = clock.now.Add(31 * time.Minute)
	if _, err := iss.VerifyAccess(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRefreshExpired(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	iss := newTestIssuer(clock)

	tok, err := iss.IssueRefresh(domain.Principal{UserID: uuid.New(), Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}

	clock.now = clock.now.Add(7*24*time.Hour + time.Minute)
	if _, err := iss.VerifyRefresh(tok); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsCrossSecretTokens(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(&fakeClock{now: time.Now().UTC()})
	p := domain.Principal{UserID: uuid.New(), Role: domain.RoleUser}

	refresh, err := iss.IssueRefresh(p)
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if _, err := iss.VerifyAccess(refresh); !errors.Is(err, ErrInvalid) {
		t.Fatalf("refresh token verified against access secret: %v", err)
	}

	access, err := iss.IssueAccess(p)
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := iss.VerifyRefresh(access); !errors.Is(err, ErrInvalid) {
		t.Fatalf("access token verified against refresh secret: %v", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer(&fakeClock{now: time.Now().UTC()})
	if _, err := iss.VerifyAccess("not.a.jwt"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerifyRejectsUnknownShape(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: time.Now().UTC()}
	iss := newTestIssuer(clock)

	// Signed with the right secret but missing a usable role claim.
	bad := newTestIssuer(clock)
	tok, err := bad.IssueAccess(domain.Principal{UserID: uuid.New(), Role: "superuser"})
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := iss.VerifyAccess(tok); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for unknown role, got %v", err)
	}
}

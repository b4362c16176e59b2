package token

import (
	"errors"
	"time"

	"jobauth/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("invalid token")
)

// Claims is the signed payload carried by both token kinds. Tokens with
// a missing or malformed userId or role are rejected at verification,
// never trusted by shape.
type Claims struct {
	UserID string      `json:"userId"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type IssuerConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration // e.g. 30 * time.Minute
	RefreshTTL    time.Duration // e.g. 7 * 24h
}

// Issuer signs and verifies access and refresh tokens with independent
// HS256 secrets, so a leaked access secret cannot forge refresh tokens.
type Issuer struct {
	cfg   IssuerConfig
	clock Clock
}

func NewIssuer(cfg IssuerConfig, clock Clock) *Issuer {
	if clock == nil {
		clock = SystemClock()
	}
	return &Issuer{cfg: cfg, clock: clock}
}

// IssueAccess signs a short-lived access token for p. Issued-at and
// expiry are always stamped fresh; whatever the caller's principal
// carried is discarded.
func (i *Issuer) IssueAccess(p domain.Principal) (string, error) {
	return i.sign(p, i.cfg.AccessSecret, i.cfg.AccessTTL)
}

func (i *Issuer) IssueRefresh(p domain.Principal) (string, error) {
	return i.sign(p, i.cfg.RefreshSecret, i.cfg.RefreshTTL)
}

func (i *Issuer) VerifyAccess(tokenStr string) (*domain.Principal, error) {
	return i.verify(tokenStr, i.cfg.AccessSecret)
}

func (i *Issuer) VerifyRefresh(tokenStr string) (*domain.Principal, error) {
	return i.verify(tokenStr, i.cfg.RefreshSecret)
}

func (i *Issuer) sign(p domain.Principal, secret []byte, ttl time.Duration) (string, error) {
	now := i.clock.Now()
	claims := Claims{
		UserID: p.UserID.String(),
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

func (i *Issuer) verify(tokenStr string, secret []byte) (*domain.Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
	)
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !tok.Valid {
		return nil, ErrInvalid
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalid
	}
	if !claims.Role.Valid() {
		return nil, ErrInvalid
	}

	p := &domain.Principal{UserID: userID, Role: claims.Role}
	if claims.IssuedAt != nil {
		p.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

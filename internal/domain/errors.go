package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("credential record not found")
	ErrEmailTaken           = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrAccountBlocked       = errors.New("account blocked")
	ErrAccountInactive      = errors.New("account inactive")
	ErrTwoFactorRequired    = errors.New("two-factor code required")
	ErrTwoFactorEnabled     = errors.New("two-factor auth already enabled")
	ErrTwoFactorNotEnrolled = errors.New("two-factor auth not enrolled")
	ErrTwoFactorCode        = errors.New("invalid or expired two-factor code")
)

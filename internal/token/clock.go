package token

import "time"

// Clock is the single authoritative time source for token expiry and
// TOTP validation. Tests substitute a fixed clock to drive expiry
// deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func SystemClock() Clock { return systemClock{} }

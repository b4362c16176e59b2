package domain

import "time"

// Principal is the authenticated identity for one request. It is only
// ever constructed from a cryptographically verified token, never from
// unsigned input, and is not persisted.
type Principal struct {
	UserID    UserID
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

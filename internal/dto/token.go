package dto

// SessionTokens carries freshly signed (not yet encrypted) tokens from
// the security service to the transport layer, which encrypts them into
// cookies.
type SessionTokens struct {
	AccessToken  string
	RefreshToken string
}

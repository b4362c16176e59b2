package dto

import "time"

// SecurityView is the credential record as exposed over HTTP; the
// password hash and TOTP secret never leave the service.
type SecurityView struct {
	UserID           string    `json:"userId"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	Status           string    `json:"status"`
	IsEmailVerified  bool      `json:"isEmailVerified"`
	IsPasswordReset  bool      `json:"isPasswordReset"`
	IsAccountBlocked bool      `json:"isAccountBlocked"`
	IsAccountDeleted bool      `json:"isAccountDeleted"`
	IsTwoFactorAuth  bool      `json:"isTwoFactorAuth"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type BlockRequest struct {
	Blocked bool `json:"blocked"`
}

package domain

import "time"

// Credential is the per-user security record. Rows are never deleted;
// IsAccountDeleted is a soft-delete flag.
type Credential struct {
	UserID UserID        `gorm:"type:uuid;primaryKey" db:"user_id" json:"userId"`
	Email  string        `gorm:"type:citext;uniqueIndex:ux_credentials_email" db:"email" json:"email"`
	Role   Role          `gorm:"type:text;not null;default:user" db:"role" json:"role"`
	Status AccountStatus `gorm:"type:text;not null;default:active" db:"status" json:"status"`

	PasswordHash []byte `gorm:"type:bytea;not null" db:"password_hash" json:"-"`

	IsEmailVerified  bool `gorm:"not null;default:false" db:"is_email_verified" json:"isEmailVerified"`
	IsPasswordReset  bool `gorm:"not null;default:false" db:"is_password_reset" json:"isPasswordReset"`
	IsAccountBlocked bool `gorm:"not null;default:false" db:"is_account_blocked" json:"isAccountBlocked"`
	IsAccountDeleted bool `gorm:"not null;default:false" db:"is_account_deleted" json:"isAccountDeleted"`
	IsTwoFactorAuth  bool `gorm:"not null;default:false" db:"is_two_factor_auth" json:"isTwoFactorAuth"`

	// Base32 TOTP secret; empty until enrollment starts. Confirmed only
	// once IsTwoFactorAuth flips true.
	TwoFactorSecret string `gorm:"type:text;not null;default:''" db:"two_factor_secret" json:"-"`

	FailedLoginCount  int        `gorm:"not null;default:0" db:"failed_login_count" json:"-"`
	LastFailedLoginAt *time.Time `gorm:"type:timestamp" db:"last_failed_login_at" json:"-"`

	CreatedAt time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (Credential) TableName() string { return "credentials" }

package store

import (
	"context"
	"errors"
	"time"

	"jobauth/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CredentialStore struct{ db *gorm.DB }

func (s *Store) Credentials() *CredentialStore { return &CredentialStore{db: s.DB} }

func (cs *CredentialStore) Create(ctx context.Context, c *domain.Credential) error {
	if c.UserID == uuid.Nil {
		c.UserID = uuid.New()
	}
	// Unique constraint on email bubbles up for races the service's
	// pre-check missed.
	return cs.db.WithContext(ctx).Create(c).Error
}

func (cs *CredentialStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Credential, error) {
	var c domain.Credential
	if err := cs.db.WithContext(ctx).First(&c, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (cs *CredentialStore) GetByEmail(ctx context.Context, email string) (*domain.Credential, error) {
	var c domain.Credential
	if err := cs.db.WithContext(ctx).First(&c, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (cs *CredentialStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := cs.db.WithContext(ctx).Model(&domain.Credential{}).Count(&n).Error
	return n, err
}

func (cs *CredentialStore) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, hash []byte) error {
	return cs.update(ctx, userID, map[string]any{
		"password_hash":     hash,
		"is_password_reset": true,
	})
}

func (cs *CredentialStore) SetBlocked(ctx context.Context, userID uuid.UUID, blocked bool) error {
	return cs.update(ctx, userID, map[string]any{"is_account_blocked": blocked})
}

// SoftDelete flags the record; rows are never physically removed.
func (cs *CredentialStore) SoftDelete(ctx context.Context, userID uuid.UUID) error {
	return cs.update(ctx, userID, map[string]any{
		"is_account_deleted": true,
		"status":             domain.StatusInactive,
	})
}

func (cs *CredentialStore) SetEmailVerified(ctx context.Context, userID uuid.UUID) error {
	return cs.update(ctx, userID, map[string]any{"is_email_verified": true})
}

func (cs *CredentialStore) RecordLoginFailure(ctx context.Context, userID uuid.UUID, at time.Time) error {
	return cs.update(ctx, userID, map[string]any{
		"failed_login_count":   gorm.Expr("failed_login_count + ?", 1),
		"last_failed_login_at": at,
	})
}

func (cs *CredentialStore) ResetLoginFailures(ctx context.Context, userID uuid.UUID) error {
	return cs.update(ctx, userID, map[string]any{
		"failed_login_count":   0,
		"last_failed_login_at": nil,
	})
}

// SetTwoFactorSecret stores a pending secret as one conditional write.
// The guard loses against an enabled record, so concurrent enrollments
// can never overwrite an active secret.
func (cs *CredentialStore) SetTwoFactorSecret(ctx context.Context, userID uuid.UUID, secret string) error {
	tx := cs.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("user_id = ? AND is_two_factor_auth = ?", userID, false).
		Updates(map[string]any{"two_factor_secret": secret})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrTwoFactorEnabled
	}
	return nil
}

// EnableTwoFactor flips the flag with the same compare-and-set guard,
// so exactly one of two concurrent confirms wins.
func (cs *CredentialStore) EnableTwoFactor(ctx context.Context, userID uuid.UUID) error {
	tx := cs.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("user_id = ? AND is_two_factor_auth = ?", userID, false).
		Updates(map[string]any{"is_two_factor_auth": true})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrTwoFactorEnabled
	}
	return nil
}

func (cs *CredentialStore) update(ctx context.Context, userID uuid.UUID, fields map[string]any) error {
	tx := cs.db.WithContext(ctx).Model(&domain.Credential{}).
		Where("user_id = ?", userID).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

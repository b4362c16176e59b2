package service

import (
	"context"

	"jobauth/internal/domain"
	"jobauth/internal/dto"
)

type TwoFactorService interface {
	Enroll(ctx context.Context, userID domain.UserID) (*dto.TwoFactorEnrollment, error)
	Confirm(ctx context.Context, userID domain.UserID, code string) error
}

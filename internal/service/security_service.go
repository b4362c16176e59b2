package service

import (
	"context"

	"jobauth/internal/domain"
	"jobauth/internal/dto"
)

type SecurityService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*domain.Credential, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.SessionTokens, error)
	UpdatePassword(ctx context.Context, userID domain.UserID, oldPassword, newPassword string) error
	RequestPasswordReset(ctx context.Context, email string) error
	VerifyEmail(ctx context.Context, userID domain.UserID) error
	SetBlocked(ctx context.Context, userID domain.UserID, blocked bool) error
	SoftDelete(ctx context.Context, userID domain.UserID) error
	Get(ctx context.Context, userID domain.UserID) (*domain.Credential, error)
	Count(ctx context.Context) (int64, error)
}

package usecase

import (
	"context"
	"strings"

	"resume-management-backend/internal/domain"
	"resume-management-backend/pkg/apperror"
	"resume-management-backend/pkg/auth"
)

type authUsecase struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenIssuer
}

func NewAuthUsecase(userRepo domain.UserRepository, tokens *auth.TokenIssuer) domain.AuthUsecase {
	return &authUsecase{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

func (u *authUsecase) Register(ctx context.Context, req *domain.RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil && !apperror.Is(err, apperror.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.Conflict("Email already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		Email:        email,
		PasswordHash: hash,
	}
	// The unique index still catches a concurrent registration as Conflict
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *domain.LoginRequest) (*domain.TokenResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if apperror.Is(err, apperror.KindNotFound) {
		return nil, apperror.Unauthorized("Incorrect email or password")
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperror.Unauthorized("Incorrect email or password")
	}

	token, err := u.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(u.tokens.TTL().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, id string) (*domain.User, error) {
	return u.userRepo.GetByID(ctx, id)
}

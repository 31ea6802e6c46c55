package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/gin-blog/internal/auth"
	"github.com/d60-Lab/gin-blog/internal/dto"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/internal/validation"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// AuthService 注册、登录与请求身份解析
type AuthService interface {
	Register(ctx context.Context, in dto.RegisterInput) (*dto.UserSummary, error)
	Login(ctx context.Context, in dto.LoginInput) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	// Authenticate 把 bearer token 解析为用户；token 无效、已注销或用户不存在时返回错误
	Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error)
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     *auth.TokenManager
	revoker    auth.Revoker // nil 表示不支持注销
	bcryptCost int
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, revoker auth.Revoker) AuthService {
	return &authService{userRepo: userRepo, tokens: tokens, revoker: revoker, bcryptCost: bcrypt.DefaultCost}
}

func (s *authService) Register(ctx context.Context, in dto.RegisterInput) (*dto.UserSummary, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	taken, err := s.userRepo.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, validation.Errors{"username": {"A user with that username already exists."}}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &model.User{Username: in.Username, Email: in.Email, PasswordHash: string(hash)}
	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	summary := dto.NewUserSummary(u)
	return &summary, nil
}

func (s *authService) Login(ctx context.Context, in dto.LoginInput) (*dto.TokenResponse, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByUsername(ctx, in.Username)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	token, claims, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: claims.ExpiresAt.Time,
		User:      dto.NewUserSummary(u),
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if s.revoker == nil || claims == nil {
		return nil
	}
	until := time.Now()
	if claims.ExpiresAt != nil {
		until = claims.ExpiresAt.Time
	}
	return s.revoker.Revoke(ctx, claims.ID, until)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, err
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, nil, err
		}
		if revoked {
			return nil, nil, auth.ErrInvalidToken
		}
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, nil, err
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return u, claims, nil
}

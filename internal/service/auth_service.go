package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"csa-reg/config"
	"csa-reg/internal/dto"
	"csa-reg/internal/model"
	"csa-reg/internal/repository"
	pkgerrors "csa-reg/pkg/errors"
	"csa-reg/pkg/jwt"
)

// RoleAdmin 管理员角色，写入 Token
const RoleAdmin = "admin"

var (
	ErrInvalidCredentials = pkgerrors.New(pkgerrors.ErrValidation, "用户名或密码错误")
	ErrTokenRevokeFailed  = errors.New("注销 Token 失败")
)

// TokenBlacklist Token 黑名单存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 Token 加入黑名单直至其自然过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	ListAdmins(ctx context.Context) ([]dto.AdminResponse, error)
	// EnsureBootstrapAdmin 管理员表为空时按配置创建首个管理员
	EnsureBootstrapAdmin(ctx context.Context) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为空时注销仅由客户端丢弃 Token
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询管理员
	admin, err := s.repo.Admin.GetByName(ctx, req.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询管理员失败", zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 签发 Token
	accessToken, err := s.jwtMgr.GenerateAccessToken(strconv.FormatInt(admin.ID, 10), admin.Name, RoleAdmin)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Admin:       dto.AdminResponse{ID: admin.ID, Name: admin.Name},
	}, nil
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, ttl); err != nil {
		s.logger.Error("写入 Token 黑名单失败", zap.Error(err))
		return ErrTokenRevokeFailed
	}
	return nil
}

func (s *authService) ListAdmins(ctx context.Context) ([]dto.AdminResponse, error) {
	admins, err := s.repo.Admin.List(ctx)
	if err != nil {
		s.logger.Error("列出管理员失败", zap.Error(err))
		return nil, pkgerrors.Persistence(err)
	}

	result := make([]dto.AdminResponse, 0, len(admins))
	for _, a := range admins {
		result = append(result, dto.AdminResponse{ID: a.ID, Name: a.Name})
	}
	return result, nil
}

func (s *authService) EnsureBootstrapAdmin(ctx context.Context) error {
	boot := s.cfg.Auth.BootstrapAdmin
	if boot.Name == "" || boot.Password == "" {
		return nil
	}

	n, err := s.repo.Admin.Count(ctx)
	if err != nil {
		return pkgerrors.Persistence(err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(boot.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.Admin.Create(ctx, &model.Admin{Name: boot.Name, PasswordHash: string(hash)}); err != nil {
		return pkgerrors.Persistence(err)
	}
	s.logger.Info("已创建初始管理员", zap.String("name", boot.Name))
	return nil
}

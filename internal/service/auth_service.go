package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Suryaprasath-41/Feedback-System/config"
	"github.com/Suryaprasath-41/Feedback-System/internal/dto"
	"github.com/Suryaprasath-41/Feedback-System/pkg/jwt"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

// TokenBlacklist revoked token store (Redis in production)
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService operator login and student token issuance
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
	// IssueStudentToken returns a token bound to one register number and its lifetime in seconds
	IssueStudentToken(registerNo string) (string, int, error)
}

type authService struct {
	cfg       *config.Config
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	logger    *zap.Logger
	// dummyHash keeps the response time of unknown usernames in line with wrong passwords
	dummyHash []byte
}

// NewAuthService creates an AuthService; blacklist may be nil when Redis is unavailable
func NewAuthService(
	cfg *config.Config,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	dummy, _ := bcrypt.GenerateFromPassword([]byte("feedback-dummy-password"), bcrypt.MinCost)
	return &authService{
		cfg:       cfg,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
		dummyHash: dummy,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. find the account
	var account *config.AccountConfig
	for i := range s.cfg.Auth.Accounts {
		if s.cfg.Auth.Accounts[i].Username == req.Username {
			account = &s.cfg.Auth.Accounts[i]
			break
		}
	}
	if account == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		return nil, ErrInvalidCredentials
	}

	// 2. verify the password (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Info("login rejected", zap.String("username", req.Username))
		return nil, ErrInvalidCredentials
	}

	// 3. issue the token
	token, err := s.jwtMgr.GenerateAccessToken(account.Username, account.Role)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("operator logged in", zap.String("username", account.Username), zap.String("role", account.Role))

	return &dto.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		Username:    account.Username,
		Role:        account.Role,
	}, nil
}

func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *authService) IssueStudentToken(registerNo string) (string, int, error) {
	token, err := s.jwtMgr.GenerateStudentToken(registerNo)
	if err != nil {
		s.logger.Error("generate student token failed", zap.Error(err))
		return "", 0, err
	}
	return token, int(s.cfg.Auth.StudentTokenTTL.Seconds()), nil
}

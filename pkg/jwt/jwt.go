package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Suryaprasath-41/Feedback-System/config"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Roles carried in Claims.Role
const (
	RoleAdmin   = "admin"
	RoleHOD     = "hod"
	RoleStudent = "student"
)

const issuer = "feedback-system"

// Claims custom JWT claims
type Claims struct {
	Username   string `json:"username,omitempty"`    // operator tokens only
	Role       string `json:"role"`                  // admin | hod | student
	RegisterNo string `json:"register_no,omitempty"` // student tokens only
	jwtv5.RegisteredClaims
}

// Manager issues and verifies tokens
type Manager struct {
	secret          []byte
	accessTokenTTL  time.Duration
	studentTokenTTL time.Duration
}

// NewManager creates the JWT manager
func NewManager(cfg *config.AuthConfig) *Manager {
	return &Manager{
		secret:          []byte(cfg.JWTSecret),
		accessTokenTTL:  cfg.AccessTokenTTL,
		studentTokenTTL: cfg.StudentTokenTTL,
	}
}

// GenerateAccessToken issues an operator token (admin or hod)
func (m *Manager) GenerateAccessToken(username, role string) (string, error) {
	return m.sign(Claims{Username: username, Role: role}, m.accessTokenTTL)
}

// GenerateStudentToken issues a short-lived token bound to one register number
func (m *Manager) GenerateStudentToken(registerNo string) (string, error) {
	return m.sign(Claims{Role: RoleStudent, RegisterNo: registerNo}, m.studentTokenTTL)
}

func (m *Manager) sign(claims Claims, ttl time.Duration) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwtv5.RegisteredClaims{
		ID:        uuid.New().String(),
		IssuedAt:  jwtv5.NewNumericDate(now),
		ExpiresAt: jwtv5.NewNumericDate(now.Add(ttl)),
		Issuer:    issuer,
	}

	token := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ParseToken parses and verifies a token
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	token, err := jwtv5.ParseWithClaims(tokenString, &Claims{}, func(t *jwtv5.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

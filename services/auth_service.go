package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"exoplanet-finder-api/config"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenRevoked = errors.New("token revoked")
)

type AuthService struct {
	jwtSecret  []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	cache      *CacheService
}

func NewAuthService(cfg config.JWTConfig, cache *CacheService) *AuthService {
	return &AuthService{
		jwtSecret:  []byte(cfg.Secret),
		accessTTL:  time.Duration(cfg.AccessExpiryMin) * time.Minute,
		refreshTTL: time.Duration(cfg.RefreshExpiryHours) * time.Hour,
		cache:      cache,
	}
}

func (s *AuthService) HashPassword(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(bytes), err
}

func (s *AuthService) CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

func (s *AuthService) generateToken(userID uint, email, tokenType string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        newTokenID(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *AuthService) GenerateAccessToken(userID uint, email string) (string, error) {
	return s.generateToken(userID, email, TokenTypeAccess, s.accessTTL)
}

func (s *AuthService) GenerateRefreshToken(userID uint, email string) (string, error) {
	return s.generateToken(userID, email, TokenTypeRefresh, s.refreshTTL)
}

func (s *AuthService) parseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return s.jwtSecret, nil
		},
	)
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateAccessToken checks an access token's signature, expiry and type.
func (s *AuthService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateRefreshToken additionally rejects tokens on the deny-list.
func (s *AuthService) ValidateRefreshToken(ctx context.Context, tokenStr string) (*Claims, error) {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	if s.cache != nil && claims.ID != "" {
		denied, err := s.cache.IsDenied(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if denied {
			return nil, ErrTokenRevoked
		}
	}
	return claims, nil
}

// RevokeRefreshToken deny-lists a refresh token until its natural expiry.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, tokenStr string) error {
	claims, err := s.parseToken(tokenStr)
	if err != nil {
		return err
	}
	if claims.TokenType != TokenTypeRefresh || claims.ID == "" {
		return ErrInvalidToken
	}
	ttl := s.refreshTTL
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Deny(ctx, claims.ID, ttl)
}

func (s *AuthService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *AuthService) RefreshTTL() time.Duration { return s.refreshTTL }

func newTokenID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)
}

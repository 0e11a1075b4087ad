package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/datorqueglobal-del/Coaching-NLM/internal/caching"
	"github.com/datorqueglobal-del/Coaching-NLM/internal/models"
)

// TokenClaims are the JWT claims carried by access tokens. Role and
// institute are advisory for clients; authorization always re-resolves
// the directory server side.
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

// TokenService issues and validates access/refresh token pairs.
type TokenService interface {
	GenerateTokens(ctx context.Context, session *models.Session) (*models.TokenResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (uuid.UUID, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeRefreshToken(ctx context.Context, refreshToken string) error
}

type tokenService struct {
	cacheSvc   caching.CacheService
	jwtSecret  []byte
	tokenTTL   int // access token TTL in seconds
	refreshTTL int // refresh token TTL in seconds
}

func NewTokenService(cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds, refreshTTLSeconds int) TokenService {
	return &tokenService{
		cacheSvc:   cacheSvc,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTLSeconds,
		refreshTTL: refreshTTLSeconds,
	}
}

func (s *tokenService) GenerateTokens(ctx context.Context, session *models.Session) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  session.UserID.String(),
		Role:    string(session.Role),
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "coachnlm-auth",
			Subject:   session.UserID.String(),
			Audience:  jwt.ClaimStrings{"coachnlm-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessTokenString, err := accessToken.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	refreshToken, err := s.generateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %v", err)
	}
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %v", err)
	}

	refreshTokenData := fmt.Sprintf("%s:%s:%d", session.UserID.String(), refreshTokenHash, now.Unix()+int64(s.refreshTTL))
	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	if err := s.cacheSvc.SetString(ctx, cacheKey, refreshTokenData, time.Duration(s.refreshTTL)*time.Second); err != nil {
		log.Printf("Failed to store refresh token: %v", err)
		// Continue, the access token is already valid
	}

	return &models.TokenResponse{
		AccessToken:  accessTokenString,
		TokenType:    "Bearer",
		ExpiresIn:    s.tokenTTL,
		RefreshToken: refreshToken,
		UserID:       session.UserID.String(),
		Role:         string(session.Role),
		IssuedAt:     now,
	}, nil
}

// RefreshToken validates a refresh token and returns the identity it
// belongs to. The caller re-resolves the session before issuing a new
// pair so revoked or rebound accounts do not get fresh tokens.
func (s *tokenService) RefreshToken(ctx context.Context, refreshToken string) (uuid.UUID, error) {
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to hash refresh token: %v", err)
	}

	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	tokenData, err := s.cacheSvc.GetString(ctx, cacheKey)
	if err != nil || tokenData == "" {
		return uuid.Nil, fmt.Errorf("invalid refresh token")
	}

	parts := strings.Split(tokenData, ":")
	if len(parts) != 3 {
		return uuid.Nil, fmt.Errorf("invalid token data")
	}

	userIDStr, expiryStr := parts[0], parts[2]
	expiry, err := strconv.ParseInt(expiryStr, 10, 64)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid token expiry")
	}

	if time.Now().Unix() > expiry {
		s.cacheSvc.Delete(ctx, cacheKey)
		return uuid.Nil, fmt.Errorf("refresh token expired")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid user ID in token")
	}

	return userID, nil
}

func (s *tokenService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	if claims, ok := jwtToken.Claims.(*TokenClaims); ok && jwtToken.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token claims")
}

func (s *tokenService) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	refreshTokenHash, err := s.hashToken(refreshToken)
	if err != nil {
		return fmt.Errorf("failed to hash refresh token: %v", err)
	}

	cacheKey := fmt.Sprintf("refresh_token:%s", refreshTokenHash)
	return s.cacheSvc.Delete(ctx, cacheKey)
}

func (s *tokenService) generateSecureToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

func (s *tokenService) hashToken(token string) (string, error) {
	hasher := sha256.New()
	if _, err := hasher.Write([]byte(token)); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

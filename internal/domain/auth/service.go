package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/yanqian/iztro-mcp/pkg/errors"
)

const tokenTypeService = "service"

// Service issues and validates bearer tokens for the HTTP transport.
type Service interface {
	Issue(ctx context.Context, subject string, ttl time.Duration) (IssuedToken, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
}

type service struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service instance.
func NewService(cfg Config, logger *slog.Logger) Service {
	return &service{
		cfg:    cfg,
		logger: logger.With("component", "auth.service"),
		now:    time.Now,
	}
}

// Issue signs a token for subject. A non-positive ttl uses the configured TTL.
func (s *service) Issue(ctx context.Context, subject string, ttl time.Duration) (IssuedToken, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return IssuedToken{}, apperrors.Wrap("invalid_input", "subject cannot be empty", nil)
	}
	if strings.TrimSpace(s.cfg.Secret) == "" {
		return IssuedToken{}, apperrors.Wrap("auth_error", "token secret is not configured", nil)
	}
	if ttl <= 0 {
		ttl = s.cfg.TokenTTL
	}
	if ttl <= 0 {
		return IssuedToken{}, apperrors.Wrap("invalid_input", "token ttl must be positive", nil)
	}

	now := s.now()
	expires := now.Add(ttl)
	claims := tokenClaims{
		TokenType: tokenTypeService,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return IssuedToken{}, apperrors.Wrap("auth_error", "failed to sign token", err)
	}
	s.logger.Info("service token issued", "subject", subject, "token_id", claims.ID, "expires_at", expires)
	return IssuedToken{Token: signed, Subject: subject, ExpiresAt: expires}, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing", nil)
	}
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap("invalid_token", "token invalid", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap("invalid_token", "token missing expiry", nil)
	}
	if claims.TokenType != tokenTypeService {
		return Claims{}, apperrors.Wrap("invalid_token", "token type mismatch", nil)
	}
	return Claims{
		Subject:   claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	TokenType string `json:"type"`
}

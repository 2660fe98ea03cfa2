package auth

import (
	"fmt"
	"time"

	"receipts/internal/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Scope discriminates access tokens from refresh tokens
type Scope string

const (
	ScopeAccess  Scope = "access_token"
	ScopeRefresh Scope = "refresh_token"

	DefaultAccessTTL  = 60 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

var (
	ErrInvalidToken = apperror.Unauthenticated("Could not validate credentials")
	ErrInvalidScope = apperror.Unauthenticated("Invalid scope for token")
)

type Claims struct {
	Scope Scope `json:"scope"`
	jwt.RegisteredClaims
}

// TokenPair is what login and refresh hand back to the client
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenService issues and validates HS256 tokens. Safe for concurrent use.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

type TokenOption func(*TokenService)

func WithTTLs(access, refresh time.Duration) TokenOption {
	return func(s *TokenService) {
		if access > 0 {
			s.accessTTL = access
		}
		if refresh > 0 {
			s.refreshTTL = refresh
		}
	}
}

func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenService(secret string, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:     []byte(secret),
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	return s
}

func (s *TokenService) IssueAccess(subject string) (string, error) {
	return s.issue(subject, ScopeAccess, s.accessTTL)
}

func (s *TokenService) IssueRefresh(subject string) (string, error) {
	return s.issue(subject, ScopeRefresh, s.refreshTTL)
}

func (s *TokenService) IssuePair(subject string) (TokenPair, error) {
	access, err := s.IssueAccess(subject)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.IssueRefresh(subject)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

// ParseAccess returns the subject of a valid access-scoped token
func (s *TokenService) ParseAccess(token string) (string, error) {
	return s.parse(token, ScopeAccess)
}

// ParseRefresh returns the subject of a valid refresh-scoped token
func (s *TokenService) ParseRefresh(token string) (string, error) {
	return s.parse(token, ScopeRefresh)
}

func (s *TokenService) issue(subject string, scope Scope, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", apperror.Internal("failed to sign token", fmt.Errorf("sign %s: %w", scope, err))
	}
	return signed, nil
}

func (s *TokenService) parse(token string, want Scope) (string, error) {
	claims := &Claims{}
	_, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	if claims.Scope != want {
		return "", ErrInvalidScope
	}
	return claims.Subject, nil
}

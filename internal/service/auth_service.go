package service

import (
	"context"
	"errors"
	"log/slog"
	"time"
	"unicode/utf8"

	"receipts/internal/apperror"
	"receipts/internal/auth"
	"receipts/internal/cache"
	"receipts/internal/model"
	"receipts/internal/repository"

	"github.com/google/uuid"
)

const (
	msgAccountExists       = "Account already exists"
	msgInvalidLogin        = "Invalid login"
	msgBadPassword         = "Invalid password"
	msgBadRefreshToken     = "Invalid refresh token"
	DefaultUserCacheTTL    = 900 * time.Second
	nameMinLen, nameMaxLen = 5, 16
	passMinLen, passMaxLen = 6, 10
)

type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SignupResponse struct {
	ID    uuid.UUID `json:"id"`
	Login string    `json:"login"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Login     string    `json:"login"`
	CreatedAt string    `json:"created_at"`
}

// AuthService covers signup, token issuance and resolving the caller from an access token
type AuthService interface {
	Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error)
	Login(ctx context.Context, login, password string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	// CurrentUser reads through the user cache. Entries are not evicted when a
	// user changes, so a cached identity may be stale for up to the TTL.
	CurrentUser(ctx context.Context, accessToken string) (*model.User, error)
}

type authService struct {
	users    repository.UserRepository
	tokens   *auth.TokenService
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

// NewAuthService wires the auth flow. A nil cache disables caching.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenService, c cache.Cache, cacheTTL time.Duration, log *slog.Logger) AuthService {
	if cacheTTL <= 0 {
		cacheTTL = DefaultUserCacheTTL
	}
	if log == nil {
		log = slog.Default()
	}
	return &authService{
		users:    users,
		tokens:   tokens,
		cache:    c,
		cacheTTL: cacheTTL,
		log:      log.With("svc", "auth"),
	}
}

// MapUserResponse hides the password hash and refresh token
func MapUserResponse(u *model.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Login:     u.Login,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func (s *authService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	if n := utf8.RuneCountInString(req.Name); n < nameMinLen || n > nameMaxLen {
		return nil, apperror.Validation("Name must be between 5 and 16 characters.")
	}
	if n := utf8.RuneCountInString(req.Password); n < passMinLen || n > passMaxLen {
		return nil, apperror.Validation("Password must be between 6 and 10 characters.")
	}

	if _, err := s.users.GetByLogin(ctx, req.Login); err == nil {
		return nil, apperror.Conflict(msgAccountExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("failed to look up user", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Internal("failed to hash password", err)
	}

	user := &model.User{
		Name:     req.Name,
		Login:    req.Login,
		Password: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same login
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperror.Conflict(msgAccountExists)
		}
		return nil, apperror.Internal("failed to create user", err)
	}

	s.log.InfoContext(ctx, "user signed up", "user_id", user.ID)
	return &SignupResponse{ID: user.ID, Login: user.Login}, nil
}

func (s *authService) Login(ctx context.Context, login, password string) (*auth.TokenPair, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Unauthenticated(msgInvalidLogin)
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	if !auth.CheckPassword(user.Password, password) {
		return nil, apperror.Unauthenticated(msgBadPassword)
	}

	pair, err := s.tokens.IssuePair(user.Login)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, &pair.RefreshToken); err != nil {
		return nil, apperror.Internal("failed to store refresh token", err)
	}
	return &pair, nil
}

// Refresh rotates the token pair. A refresh token is good for exactly one use:
// presenting anything but the stored token clears it and forces a new login.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	login, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, s.revoke(ctx, user.ID)
	}

	pair, err := s.tokens.IssuePair(user.Login)
	if err != nil {
		return nil, err
	}
	err = s.users.ReplaceRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, s.revoke(ctx, user.ID)
	}
	if err != nil {
		return nil, apperror.Internal("failed to store refresh token", err)
	}
	return &pair, nil
}

func (s *authService) revoke(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		return apperror.Internal("failed to clear refresh token", err)
	}
	s.log.WarnContext(ctx, "stale refresh token presented, session revoked", "user_id", userID)
	return apperror.Unauthenticated(msgBadRefreshToken)
}

func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := s.users.SetRefreshToken(ctx, userID, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrInvalidToken
		}
		return apperror.Internal("failed to clear refresh token", err)
	}
	return nil
}

func (s *authService) CurrentUser(ctx context.Context, accessToken string) (*model.User, error) {
	login, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, err
	}
	key := cache.UserKey(login)

	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "user cache read failed", "error", err)
		case ok:
			if user, valid := cache.DecodeUser(data); valid {
				return user, nil
			}
		}
	}

	user, err := s.users.GetByLogin(ctx, login)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, apperror.Internal("failed to look up user", err)
	}

	if s.cache != nil {
		data, err := cache.EncodeUser(user)
		if err == nil {
			err = s.cache.Set(ctx, key, data, s.cacheTTL)
		}
		if err != nil {
			s.log.WarnContext(ctx, "user cache write failed", "error", err)
		}
	}
	return user, nil
}

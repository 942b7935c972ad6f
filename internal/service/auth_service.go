package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/solenne/studio-booking/internal/domain"
	"github.com/solenne/studio-booking/internal/platform/auth"
	"github.com/solenne/studio-booking/internal/repo/postgres"
	"github.com/solenne/studio-booking/pkg/config"
	"github.com/solenne/studio-booking/pkg/events"
	"github.com/solenne/studio-booking/pkg/logger"
)

type AuthService interface {
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)
	Refresh(ctx context.Context, rawRefresh string) (*domain.LoginResponse, error)
	ValidateRefresh(ctx context.Context, rawRefresh string) (bool, error)
	Revoke(ctx context.Context, rawRefresh string) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}

type authService struct {
	users    postgres.UsersRepo
	tokens   postgres.TokensRepo
	tokenMgr *auth.TokenManager
	throttle LoginThrottle
	bus      events.Publisher
	cfg      *config.Config
	now      func() time.Time
}

func NewAuthService(
	users postgres.UsersRepo,
	tokens postgres.TokensRepo,
	tokenMgr *auth.TokenManager,
	throttle LoginThrottle,
	bus events.Publisher,
	cfg *config.Config,
) AuthService {
	return &authService{
		users:    users,
		tokens:   tokens,
		tokenMgr: tokenMgr,
		throttle: throttle,
		bus:      bus,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// Uniform failure: do not reveal whether the account exists.
		return nil, domain.ErrInvalidCredentials
	}
	if user.IsLocked(s.now()) {
		return nil, domain.ErrAccountLocked
	}

	valid, err := argon2id.ComparePasswordAndHash(req.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		s.recordFailure(ctx, user)
		return nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, user.Email); err != nil {
			logger.WarnContext(ctx, "Failed to reset login throttle", "error", err)
		}
	}

	resp, err := s.issueTokens(ctx, user, req.Remember)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.AuthLogin, events.AuthEvent{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: s.now(),
	})
	return resp, nil
}

// Refresh rotates the refresh token: the old row is revoked with a pointer
// to its successor, and a new pair is issued preserving the persistence
// tier. Missing, revoked and expired tokens all fail with the same error
// so a caller cannot tell a stolen-and-revoked token from a stale one.
func (s *authService) Refresh(ctx context.Context, rawRefresh string) (*domain.LoginResponse, error) {
	if rawRefresh == "" {
		return nil, domain.ErrInvalidToken
	}

	hash := auth.HashToken(rawRefresh)
	row, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if row == nil || !row.IsActive(s.now()) {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, row.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// User deleted after issuance: indistinguishable from a bad token.
		return nil, domain.ErrInvalidToken
	}

	resp, newHash, err := s.mintPair(ctx, user, row.Persistent)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, hash, &newHash); err != nil {
		return nil, fmt.Errorf("failed to revoke rotated token: %w", err)
	}

	s.publish(ctx, events.AuthTokenRotated, events.AuthEvent{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: s.now(),
	})
	return resp, nil
}

// ValidateRefresh reports whether a matching, non-revoked, non-expired row
// exists. No further detail is exposed.
func (s *authService) ValidateRefresh(ctx context.Context, rawRefresh string) (bool, error) {
	if rawRefresh == "" {
		return false, nil
	}
	row, err := s.tokens.FindByHash(ctx, auth.HashToken(rawRefresh))
	if err != nil {
		return false, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	return row != nil && row.IsActive(s.now()), nil
}

// Revoke is idempotent: revoking an unknown or already-revoked token is a
// no-op.
func (s *authService) Revoke(ctx context.Context, rawRefresh string) error {
	if rawRefresh == "" {
		return nil
	}

	hash := auth.HashToken(rawRefresh)
	row, err := s.tokens.FindByHash(ctx, hash)
	if err != nil {
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if row == nil {
		return nil
	}
	if err := s.tokens.Revoke(ctx, hash, nil); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	if row.RevokedAt == nil {
		s.publish(ctx, events.AuthLogout, events.AuthEvent{
			UserID:     row.UserID,
			OccurredAt: s.now(),
		})
	}
	return nil
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user %d", domain.ErrNotFound, id)
	}
	return user, nil
}

func (s *authService) issueTokens(ctx context.Context, user *domain.User, persistent bool) (*domain.LoginResponse, error) {
	resp, _, err := s.mintPair(ctx, user, persistent)
	return resp, err
}

// mintPair issues an access token and a refresh token. Only the SHA-256
// hash of the refresh token is persisted; the raw value leaves the server
// exactly once, in the response.
func (s *authService) mintPair(ctx context.Context, user *domain.User, persistent bool) (*domain.LoginResponse, string, error) {
	accessToken, err := s.tokenMgr.NewAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create access token: %w", err)
	}

	raw, hash, err := auth.NewRefreshToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to create refresh token: %w", err)
	}

	ttl := s.cfg.Auth.RefreshTokenTTL
	if persistent {
		ttl = s.cfg.Auth.RememberMeTokenTTL
	}
	_, err = s.tokens.Create(ctx, &domain.RefreshToken{
		UserID:     user.ID,
		TokenHash:  hash,
		ExpiresAt:  s.now().Add(ttl),
		Persistent: persistent,
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &domain.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: raw,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
		User:         user.ToUserInfo(),
		Persistent:   persistent,
	}, hash, nil
}

func (s *authService) recordFailure(ctx context.Context, user *domain.User) {
	if s.throttle == nil {
		return
	}
	count, err := s.throttle.RegisterFailure(ctx, user.Email)
	if err != nil {
		logger.WarnContext(ctx, "Failed to record login failure", "error", err)
		return
	}
	if count >= s.cfg.Login.MaxAttempts {
		until := s.now().Add(s.cfg.Login.LockoutPeriod)
		if err := s.users.SetLockedUntil(ctx, user.ID, &until); err != nil {
			logger.ErrorContext(ctx, "Failed to lock account", "error", err, "user_id", user.ID)
			return
		}
		if err := s.throttle.Reset(ctx, user.Email); err != nil {
			logger.WarnContext(ctx, "Failed to reset login throttle", "error", err)
		}
		logger.WarnContext(ctx, "Account locked after repeated failures", "user_id", user.ID)
	}
}

func (s *authService) publish(ctx context.Context, subject string, payload any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type tokenRepository interface {
	Create(ctx context.Context, token *models.Token) error
	FindActive(ctx context.Context, raw string, kind models.TokenKind) (*models.Token, error)
	DeactivateForUser(ctx context.Context, userID string, kind models.TokenKind) error
	PurgeInactive(ctx context.Context, userID *string) (int64, error)
}

type tokenUserResolver interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TokenConfig is the immutable signing configuration handed to the service
// at construction time.
type TokenConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenService owns the session credential lifecycle: issuing, deactivating,
// validating and purging. The single-active-session policy is enforced by
// callers deactivating before issuing, never by a uniqueness constraint, so
// refresh can rotate the access credential while the refresh credential
// stays valid. Note the deactivate-then-issue sequence is not serialised
// against a concurrent login for the same user.
type TokenService struct {
	repo   tokenRepository
	users  tokenUserResolver
	logger *zap.Logger
	config TokenConfig
}

// NewTokenService constructs a TokenService instance.
func NewTokenService(repo tokenRepository, users tokenUserResolver, logger *zap.Logger, config TokenConfig) *TokenService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenService{repo: repo, users: users, logger: logger, config: config}
}

// TTLFor returns the configured lifetime for a credential kind.
func (s *TokenService) TTLFor(kind models.TokenKind) time.Duration {
	if kind == models.TokenRefresh {
		return s.config.RefreshTTL
	}
	return s.config.AccessTTL
}

// Issue signs a credential for the user and persists it as the active row of
// its kind. Callers starting a fresh session must deactivate first.
func (s *TokenService) Issue(ctx context.Context, user *models.User, kind models.TokenKind, ttl time.Duration) (string, *models.Token, error) {
	issuedAt := time.Now().UTC()
	expiresAt := issuedAt.Add(ttl)

	claims := &models.TokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign token")
	}

	token := &models.Token{
		UserID:    user.ID,
		Kind:      kind,
		Token:     signed,
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist token")
	}

	return signed, token, nil
}

// Deactivate flips every matching active credential of the user to inactive.
// Idempotent; a second call is a no-op.
func (s *TokenService) Deactivate(ctx context.Context, userID string, kind models.TokenKind) error {
	if err := s.repo.DeactivateForUser(ctx, userID, kind); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate tokens")
	}
	return nil
}

// Validate verifies the raw credential end to end: signature and shape,
// expiry, embedded kind, then the store lookup for an active row with this
// exact value. Only after all checks pass is the subject resolved.
func (s *TokenService) Validate(ctx context.Context, raw string, expected models.TokenKind) (*models.Subject, error) {
	parsed, err := jwt.ParseWithClaims(raw, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, appErrors.ErrTokenExpired
		}
		return nil, appErrors.Wrap(err, appErrors.ErrTokenInvalid.Code, appErrors.ErrTokenInvalid.Status, appErrors.ErrTokenInvalid.Message)
	}

	claims, ok := parsed.Claims.(*models.TokenClaims)
	if !ok || !parsed.Valid {
		return nil, appErrors.ErrTokenInvalid
	}

	if claims.Kind != expected {
		return nil, appErrors.ErrTokenWrongType
	}

	if _, err := s.repo.FindActive(ctx, raw, expected); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTokenRevoked
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTokenRevoked
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve subject")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	return &models.Subject{ID: user.ID, Username: user.Username, Role: user.Role}, nil
}

// PurgeInactive hard-deletes revoked credentials, for one user or globally
// when userID is nil. Returns the number of rows removed.
func (s *TokenService) PurgeInactive(ctx context.Context, userID *string) (int64, error) {
	removed, err := s.repo.PurgeInactive(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge tokens")
	}
	s.logger.Info("purged inactive tokens", zap.Int64("removed", removed))
	return removed, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type authUserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

type sessionEvents interface {
	Publish(ctx context.Context, key string, payload any)
}

// AuthService provides the authentication flows on top of the token
// lifecycle: register, login, refresh and logout.
type AuthService struct {
	users     authUserRepository
	tokens    *TokenService
	validator *validator.Validate
	logger    *zap.Logger
	events    sessionEvents
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, tokens *TokenService, validate *validator.Validate, logger *zap.Logger, events sessionEvents) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{users: users, tokens: tokens, validator: validate, logger: logger, events: events}
}

// Register creates a new account with the base role.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid register payload")
	}

	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "username already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}

	return user, nil
}

// Login authenticates the user and starts a fresh session. All previously
// active credentials are deactivated before the new pair is issued; the
// deactivation must commit first or a racing login could leave two active
// rows.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenPairResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}

	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "")
	}

	if err := s.tokens.Deactivate(ctx, user.ID, models.TokenAll); err != nil {
		return nil, err
	}

	access, _, err := s.tokens.Issue(ctx, user, models.TokenAccess, s.tokens.TTLFor(models.TokenAccess))
	if err != nil {
		return nil, err
	}
	refresh, _, err := s.tokens.Issue(ctx, user, models.TokenRefresh, s.tokens.TTLFor(models.TokenRefresh))
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		s.events.Publish(ctx, "user.login", map[string]string{"user_id": user.ID, "username": user.Username})
	}

	return &dto.TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.tokens.TTLFor(models.TokenAccess).Seconds()),
	}, nil
}

// Refresh validates the presented refresh credential and rotates the access
// credential only; the refresh credential stays active.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.TokenPairResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	subject, err := s.tokens.Validate(ctx, req.RefreshToken, models.TokenRefresh)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, subject.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrTokenRevoked
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.tokens.Deactivate(ctx, user.ID, models.TokenAccess); err != nil {
		return nil, err
	}

	access, _, err := s.tokens.Issue(ctx, user, models.TokenAccess, s.tokens.TTLFor(models.TokenAccess))
	if err != nil {
		return nil, err
	}

	return &dto.TokenPairResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.tokens.TTLFor(models.TokenAccess).Seconds()),
	}, nil
}

// Logout deactivates every credential of the subject.
func (s *AuthService) Logout(ctx context.Context, subject *models.Subject) error {
	if subject == nil {
		return appErrors.ErrUnauthorized
	}
	if err := s.tokens.Deactivate(ctx, subject.ID, models.TokenAll); err != nil {
		return err
	}
	if s.events != nil {
		s.events.Publish(ctx, "user.logout", map[string]string{"user_id": subject.ID, "username": subject.Username})
	}
	return nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/guard"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type userRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p query.Params) ([]models.User, error)
	Count(ctx context.Context, filters query.Filters) (int, error)
}

type userTokenManager interface {
	Deactivate(ctx context.Context, userID string, kind models.TokenKind) error
	PurgeInactive(ctx context.Context, userID *string) (int64, error)
}

// UserService provides user management use cases.
type UserService struct {
	repo      userRepository
	tokens    userTokenManager
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, tokens userTokenManager, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, tokens: tokens, validator: validate, logger: logger}
}

// Get returns a user by id.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// UpdateProfile changes profile fields. The target user themselves or a
// moderator may apply the change; an empty payload is rejected.
func (s *UserService) UpdateProfile(ctx context.Context, subject *models.Subject, id string, req dto.UpdateUserRequest) (*models.User, error) {
	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == id); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid update payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// ChangeRole promotes or demotes a user. Admin only.
func (s *UserService) ChangeRole(ctx context.Context, subject *models.Subject, id string, req dto.ChangeRoleRequest) error {
	if err := guard.Require(subject, models.RoleAdmin); err != nil {
		return err
	}
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid role payload")
	}

	role, ok := models.ParseRole(req.Role)
	if !ok {
		return appErrors.Clone(appErrors.ErrValidation, "unknown role")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change role")
	}
	return nil
}

// Delete removes an account. The account owner or an admin may delete it;
// every credential is deactivated and the inactive rows purged before the
// user row goes away.
func (s *UserService) Delete(ctx context.Context, subject *models.Subject, id string) error {
	if err := guard.RequireOr(subject, models.RoleAdmin, subject != nil && subject.ID == id); err != nil {
		return err
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.tokens.Deactivate(ctx, id, models.TokenAll); err != nil {
		return err
	}
	if _, err := s.tokens.PurgeInactive(ctx, &id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

// List returns users matching the filters.
func (s *UserService) List(ctx context.Context, p query.Params) ([]models.User, error) {
	users, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, nil
}

// Count returns the number of users matching the filters.
func (s *UserService) Count(ctx context.Context, filters query.Filters) (int, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	return total, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/guard"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type algorithmRepository interface {
	FindByID(ctx context.Context, id string) (*models.Algorithm, error)
	Create(ctx context.Context, algorithm *models.Algorithm) error
	Update(ctx context.Context, algorithm *models.Algorithm) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p query.Params) ([]models.Algorithm, error)
	Count(ctx context.Context, filters query.Filters) (int, error)
}

// ScriptChecker validates pick/ban script definitions. The grammar lives in
// an external collaborator; this core only consumes the interface.
type ScriptChecker interface {
	Check(script string, teamsCount, mapsCount int) error
}

// PermissiveScriptChecker accepts any non-blank script.
type PermissiveScriptChecker struct{}

// Check rejects blank scripts and nothing else.
func (PermissiveScriptChecker) Check(script string, teamsCount, mapsCount int) error {
	if strings.TrimSpace(script) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "script must not be blank")
	}
	return nil
}

// AlgorithmService provides pick/ban algorithm management.
type AlgorithmService struct {
	repo      algorithmRepository
	checker   ScriptChecker
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAlgorithmService constructs an AlgorithmService instance.
func NewAlgorithmService(repo algorithmRepository, checker ScriptChecker, validate *validator.Validate, logger *zap.Logger) *AlgorithmService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if checker == nil {
		checker = PermissiveScriptChecker{}
	}
	return &AlgorithmService{repo: repo, checker: checker, validator: validate, logger: logger}
}

// Get returns an algorithm by id.
func (s *AlgorithmService) Get(ctx context.Context, id string) (*models.Algorithm, error) {
	algorithm, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "algorithm not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load algorithm")
	}
	return algorithm, nil
}

// Create registers a new algorithm owned by the subject.
func (s *AlgorithmService) Create(ctx context.Context, subject *models.Subject, req dto.CreateAlgorithmRequest) (*models.Algorithm, error) {
	if err := guard.Require(subject, models.RoleUser); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid algorithm payload")
	}
	if err := s.checker.Check(req.Script, req.TeamsCount, req.MapsCount); err != nil {
		return nil, err
	}

	algorithm := &models.Algorithm{
		OwnerID:    subject.ID,
		Name:       req.Name,
		Script:     req.Script,
		TeamsCount: req.TeamsCount,
		MapsCount:  req.MapsCount,
	}
	if err := s.repo.Create(ctx, algorithm); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create algorithm")
	}
	return algorithm, nil
}

// Update changes an algorithm. The owner or a moderator may edit it; an
// empty payload is rejected.
func (s *AlgorithmService) Update(ctx context.Context, subject *models.Subject, id string, req dto.UpdateAlgorithmRequest) (*models.Algorithm, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid algorithm payload")
	}

	algorithm, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == algorithm.OwnerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		algorithm.Name = *req.Name
	}
	if req.Script != nil {
		algorithm.Script = *req.Script
	}
	if req.TeamsCount != nil {
		algorithm.TeamsCount = *req.TeamsCount
	}
	if req.MapsCount != nil {
		algorithm.MapsCount = *req.MapsCount
	}

	if err := s.checker.Check(algorithm.Script, algorithm.TeamsCount, algorithm.MapsCount); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, algorithm); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update algorithm")
	}
	return algorithm, nil
}

// Delete removes an algorithm. Owner or moderator only.
func (s *AlgorithmService) Delete(ctx context.Context, subject *models.Subject, id string) error {
	algorithm, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == algorithm.OwnerID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete algorithm")
	}
	return nil
}

// List returns algorithms matching the filters.
func (s *AlgorithmService) List(ctx context.Context, p query.Params) ([]models.Algorithm, error) {
	algorithms, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list algorithms")
	}
	return algorithms, nil
}

// Count returns the number of algorithms matching the filters.
func (s *AlgorithmService) Count(ctx context.Context, filters query.Filters) (int, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count algorithms")
	}
	return total, nil
}

package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/guard"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type teamRepository interface {
	FindByID(ctx context.Context, id string) (*models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p query.Params) ([]models.Team, error)
	Count(ctx context.Context, filters query.Filters) (int, error)
}

type teamLobbyResolver interface {
	FindByID(ctx context.Context, id string) (*models.Lobby, error)
}

// TeamService provides team management inside lobbies.
type TeamService struct {
	repo      teamRepository
	lobbies   teamLobbyResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeamService constructs a TeamService instance.
func NewTeamService(repo teamRepository, lobbies teamLobbyResolver, validate *validator.Validate, logger *zap.Logger) *TeamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeamService{repo: repo, lobbies: lobbies, validator: validate, logger: logger}
}

// Get returns a team by id.
func (s *TeamService) Get(ctx context.Context, id string) (*models.Team, error) {
	team, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "team not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load team")
	}
	return team, nil
}

// Create adds a team to a lobby. The lobby host or a moderator may manage
// teams.
func (s *TeamService) Create(ctx context.Context, subject *models.Subject, req dto.CreateTeamRequest) (*models.Team, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team payload")
	}

	lobby, err := s.lobbies.FindByID(ctx, req.LobbyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown lobby")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve lobby")
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == lobby.HostID); err != nil {
		return nil, err
	}

	team := &models.Team{LobbyID: lobby.ID, Name: req.Name}
	if err := s.repo.Create(ctx, team); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create team")
	}
	return team, nil
}

// Update renames a team. Lobby host or moderator only; an empty payload is
// rejected.
func (s *TeamService) Update(ctx context.Context, subject *models.Subject, id string, req dto.UpdateTeamRequest) (*models.Team, error) {
	if req.Empty() {
		return nil, appErrors.Clone(appErrors.ErrNoData, "")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid team payload")
	}

	team, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.requireLobbyOwner(ctx, subject, team.LobbyID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		team.Name = *req.Name
	}

	if err := s.repo.Update(ctx, team); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update team")
	}
	return team, nil
}

// Delete removes a team. Lobby host or moderator only.
func (s *TeamService) Delete(ctx context.Context, subject *models.Subject, id string) error {
	team, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.requireLobbyOwner(ctx, subject, team.LobbyID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete team")
	}
	return nil
}

// List returns teams matching the filters.
func (s *TeamService) List(ctx context.Context, p query.Params) ([]models.Team, error) {
	teams, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teams")
	}
	return teams, nil
}

// Count returns the number of teams matching the filters.
func (s *TeamService) Count(ctx context.Context, filters query.Filters) (int, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teams")
	}
	return total, nil
}

func (s *TeamService) requireLobbyOwner(ctx context.Context, subject *models.Subject, lobbyID string) error {
	lobby, err := s.lobbies.FindByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lobby not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve lobby")
	}
	return guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == lobby.HostID)
}

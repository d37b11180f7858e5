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

type participantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Participant, error)
	FindByLobbyAndUser(ctx context.Context, lobbyID, userID string) (*models.Participant, error)
	Create(ctx context.Context, participant *models.Participant) error
	AssignTeam(ctx context.Context, id string, teamID *string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, p query.Params) ([]models.Participant, error)
	Count(ctx context.Context, filters query.Filters) (int, error)
}

type participantTeamResolver interface {
	FindByID(ctx context.Context, id string) (*models.Team, error)
}

// ParticipantService manages lobby membership and team assignment.
type ParticipantService struct {
	repo      participantRepository
	lobbies   teamLobbyResolver
	teams     participantTeamResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewParticipantService constructs a ParticipantService instance.
func NewParticipantService(repo participantRepository, lobbies teamLobbyResolver, teams participantTeamResolver, validate *validator.Validate, logger *zap.Logger) *ParticipantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ParticipantService{repo: repo, lobbies: lobbies, teams: teams, validator: validate, logger: logger}
}

// Join registers the subject as a participant of a lobby. Archived lobbies
// cannot be joined and double joins are rejected.
func (s *ParticipantService) Join(ctx context.Context, subject *models.Subject, req dto.JoinLobbyRequest) (*models.Participant, error) {
	if err := guard.Require(subject, models.RoleUser); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid join payload")
	}

	lobby, err := s.lobbies.FindByID(ctx, req.LobbyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lobby not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve lobby")
	}
	if lobby.Status == models.LobbyArchived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lobby is archived")
	}

	if _, err := s.repo.FindByLobbyAndUser(ctx, lobby.ID, subject.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "already joined")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check membership")
	}

	participant := &models.Participant{LobbyID: lobby.ID, UserID: subject.ID}
	if err := s.repo.Create(ctx, participant); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create participant")
	}
	return participant, nil
}

// Leave removes a participant. The participant themselves, the lobby host
// or a moderator may remove it.
func (s *ParticipantService) Leave(ctx context.Context, subject *models.Subject, id string) error {
	participant, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	owns := subject != nil && subject.ID == participant.UserID
	if !owns {
		lobby, err := s.lobbies.FindByID(ctx, participant.LobbyID)
		if err == nil && subject != nil && subject.ID == lobby.HostID {
			owns = true
		}
	}
	if err := guard.RequireOr(subject, models.RoleModerator, owns); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete participant")
	}
	return nil
}

// AssignTeam moves a participant onto a team of the same lobby; a nil team
// clears the assignment. Lobby host or moderator only.
func (s *ParticipantService) AssignTeam(ctx context.Context, subject *models.Subject, id string, req dto.AssignTeamRequest) (*models.Participant, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	participant, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	lobby, err := s.lobbies.FindByID(ctx, participant.LobbyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lobby not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve lobby")
	}

	if err := guard.RequireOr(subject, models.RoleModerator, subject != nil && subject.ID == lobby.HostID); err != nil {
		return nil, err
	}

	if req.TeamID != nil {
		team, err := s.teams.FindByID(ctx, *req.TeamID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown team")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve team")
		}
		if team.LobbyID != participant.LobbyID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "team belongs to another lobby")
		}
	}

	if err := s.repo.AssignTeam(ctx, id, req.TeamID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign team")
	}

	participant.TeamID = req.TeamID
	return participant, nil
}

// List returns participants matching the filters.
func (s *ParticipantService) List(ctx context.Context, p query.Params) ([]models.Participant, error) {
	participants, err := s.repo.List(ctx, p)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list participants")
	}
	return participants, nil
}

// Count returns the number of participants matching the filters.
func (s *ParticipantService) Count(ctx context.Context, filters query.Filters) (int, error) {
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	return total, nil
}

func (s *ParticipantService) get(ctx context.Context, id string) (*models.Participant, error) {
	participant, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
	}
	return participant, nil
}

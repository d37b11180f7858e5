package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
)

type fakeParticipantRepo struct {
	participants map[string]*models.Participant
}

func newFakeParticipantRepo() *fakeParticipantRepo {
	return &fakeParticipantRepo{participants: make(map[string]*models.Participant)}
}

func (f *fakeParticipantRepo) FindByID(ctx context.Context, id string) (*models.Participant, error) {
	participant, ok := f.participants[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return participant, nil
}

func (f *fakeParticipantRepo) FindByLobbyAndUser(ctx context.Context, lobbyID, userID string) (*models.Participant, error) {
	for _, participant := range f.participants {
		if participant.LobbyID == lobbyID && participant.UserID == userID {
			return participant, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeParticipantRepo) Create(ctx context.Context, participant *models.Participant) error {
	if participant.ID == "" {
		participant.ID = uuid.NewString()
	}
	f.participants[participant.ID] = participant
	return nil
}

func (f *fakeParticipantRepo) AssignTeam(ctx context.Context, id string, teamID *string) error {
	f.participants[id].TeamID = teamID
	return nil
}

func (f *fakeParticipantRepo) Delete(ctx context.Context, id string) error {
	delete(f.participants, id)
	return nil
}

func (f *fakeParticipantRepo) List(ctx context.Context, p query.Params) ([]models.Participant, error) {
	out := make([]models.Participant, 0, len(f.participants))
	for _, participant := range f.participants {
		out = append(out, *participant)
	}
	return out, nil
}

func (f *fakeParticipantRepo) Count(ctx context.Context, filters query.Filters) (int, error) {
	return len(f.participants), nil
}

type fakeTeamResolver struct {
	teams map[string]*models.Team
}

func (f *fakeTeamResolver) FindByID(ctx context.Context, id string) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return team, nil
}

type participantFixture struct {
	svc     *ParticipantService
	repo    *fakeParticipantRepo
	lobby   *models.Lobby
	teamID  string
	otherID string
}

func newParticipantFixture() participantFixture {
	lobby := &models.Lobby{ID: uuid.NewString(), HostID: "host", Status: models.LobbyActive}
	teamID := uuid.NewString()
	otherID := uuid.NewString()
	repo := newFakeParticipantRepo()
	lobbies := newFakeLobbyRepo(lobby)
	teams := &fakeTeamResolver{teams: map[string]*models.Team{
		teamID:  {ID: teamID, LobbyID: lobby.ID, Name: "radiant"},
		otherID: {ID: otherID, LobbyID: uuid.NewString(), Name: "dire"},
	}}
	svc := NewParticipantService(repo, lobbies, teams, nil, nil)
	return participantFixture{svc: svc, repo: repo, lobby: lobby, teamID: teamID, otherID: otherID}
}

func TestJoinLobby(t *testing.T) {
	fx := newParticipantFixture()
	subject := &models.Subject{ID: "u1", Role: models.RoleUser}

	participant, err := fx.svc.Join(context.Background(), subject, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.NoError(t, err)
	assert.Equal(t, "u1", participant.UserID)
	assert.Nil(t, participant.TeamID)
}

func TestJoinTwiceRejected(t *testing.T) {
	fx := newParticipantFixture()
	subject := &models.Subject{ID: "u1", Role: models.RoleUser}
	ctx := context.Background()

	_, err := fx.svc.Join(ctx, subject, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.NoError(t, err)

	_, err = fx.svc.Join(ctx, subject, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestJoinArchivedLobbyRejected(t *testing.T) {
	fx := newParticipantFixture()
	fx.lobby.Status = models.LobbyArchived
	subject := &models.Subject{ID: "u1", Role: models.RoleUser}

	_, err := fx.svc.Join(context.Background(), subject, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestLeavePermissions(t *testing.T) {
	fx := newParticipantFixture()
	member := &models.Subject{ID: "u1", Role: models.RoleUser}
	ctx := context.Background()

	join := func() string {
		participant, err := fx.svc.Join(ctx, member, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
		require.NoError(t, err)
		return participant.ID
	}

	// the participant may leave on their own
	id := join()
	require.NoError(t, fx.svc.Leave(ctx, member, id))

	// the lobby host may remove them
	id = join()
	require.NoError(t, fx.svc.Leave(ctx, &models.Subject{ID: "host", Role: models.RoleUser}, id))

	// a moderator may remove them
	id = join()
	require.NoError(t, fx.svc.Leave(ctx, &models.Subject{ID: "mod", Role: models.RoleModerator}, id))

	// an unrelated user may not
	id = join()
	err := fx.svc.Leave(ctx, &models.Subject{ID: "stranger", Role: models.RoleUser}, id)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestAssignTeamAndClear(t *testing.T) {
	fx := newParticipantFixture()
	member := &models.Subject{ID: "u1", Role: models.RoleUser}
	host := &models.Subject{ID: "host", Role: models.RoleUser}
	ctx := context.Background()

	joined, err := fx.svc.Join(ctx, member, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.NoError(t, err)

	assigned, err := fx.svc.AssignTeam(ctx, host, joined.ID, dto.AssignTeamRequest{TeamID: &fx.teamID})
	require.NoError(t, err)
	require.NotNil(t, assigned.TeamID)
	assert.Equal(t, fx.teamID, *assigned.TeamID)

	cleared, err := fx.svc.AssignTeam(ctx, host, joined.ID, dto.AssignTeamRequest{})
	require.NoError(t, err)
	assert.Nil(t, cleared.TeamID)
}

func TestAssignTeamFromAnotherLobbyRejected(t *testing.T) {
	fx := newParticipantFixture()
	member := &models.Subject{ID: "u1", Role: models.RoleUser}
	host := &models.Subject{ID: "host", Role: models.RoleUser}
	ctx := context.Background()

	joined, err := fx.svc.Join(ctx, member, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.NoError(t, err)

	_, err = fx.svc.AssignTeam(ctx, host, joined.ID, dto.AssignTeamRequest{TeamID: &fx.otherID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAssignTeamRequiresHostOrModerator(t *testing.T) {
	fx := newParticipantFixture()
	member := &models.Subject{ID: "u1", Role: models.RoleUser}
	ctx := context.Background()

	joined, err := fx.svc.Join(ctx, member, dto.JoinLobbyRequest{LobbyID: fx.lobby.ID})
	require.NoError(t, err)

	_, err = fx.svc.AssignTeam(ctx, member, joined.ID, dto.AssignTeamRequest{TeamID: &fx.teamID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

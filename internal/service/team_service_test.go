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

type fakeTeamRepo struct {
	teams map[string]*models.Team
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: make(map[string]*models.Team)}
}

func (f *fakeTeamRepo) FindByID(ctx context.Context, id string) (*models.Team, error) {
	team, ok := f.teams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return team, nil
}

func (f *fakeTeamRepo) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) Update(ctx context.Context, team *models.Team) error {
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeamRepo) Delete(ctx context.Context, id string) error {
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamRepo) List(ctx context.Context, p query.Params) ([]models.Team, error) {
	out := make([]models.Team, 0, len(f.teams))
	for _, team := range f.teams {
		out = append(out, *team)
	}
	return out, nil
}

func (f *fakeTeamRepo) Count(ctx context.Context, filters query.Filters) (int, error) {
	return len(f.teams), nil
}

func newTeamFixture() (*TeamService, *fakeTeamRepo, *models.Lobby) {
	lobby := &models.Lobby{ID: uuid.NewString(), HostID: "host", Status: models.LobbyCreated}
	repo := newFakeTeamRepo()
	svc := NewTeamService(repo, newFakeLobbyRepo(lobby), nil, nil)
	return svc, repo, lobby
}

func TestCreateTeamByHost(t *testing.T) {
	svc, repo, lobby := newTeamFixture()
	host := &models.Subject{ID: "host", Role: models.RoleUser}

	team, err := svc.Create(context.Background(), host, dto.CreateTeamRequest{LobbyID: lobby.ID, Name: "radiant"})
	require.NoError(t, err)
	assert.Equal(t, lobby.ID, team.LobbyID)
	assert.Len(t, repo.teams, 1)
}

func TestCreateTeamForbiddenForNonHost(t *testing.T) {
	svc, _, lobby := newTeamFixture()
	stranger := &models.Subject{ID: "stranger", Role: models.RoleUser}

	_, err := svc.Create(context.Background(), stranger, dto.CreateTeamRequest{LobbyID: lobby.ID, Name: "radiant"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateTeamEmptyPayload(t *testing.T) {
	svc, _, lobby := newTeamFixture()
	host := &models.Subject{ID: "host", Role: models.RoleUser}

	team, err := svc.Create(context.Background(), host, dto.CreateTeamRequest{LobbyID: lobby.ID, Name: "radiant"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), host, team.ID, dto.UpdateTeamRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNoData.Code, appErrors.FromError(err).Code)
}

func TestDeleteTeamByModerator(t *testing.T) {
	svc, repo, lobby := newTeamFixture()
	host := &models.Subject{ID: "host", Role: models.RoleUser}

	team, err := svc.Create(context.Background(), host, dto.CreateTeamRequest{LobbyID: lobby.ID, Name: "radiant"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), &models.Subject{ID: "mod", Role: models.RoleModerator}, team.ID))
	assert.Empty(t, repo.teams)
}

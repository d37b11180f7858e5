package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AriosJentu/PickerApp-sub000/internal/middleware"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
)

type lobbyRepoMock struct {
	lobbies    map[string]*models.Lobby
	lastParams query.Params
	lastCount  query.Filters
}

func newLobbyRepoMock(lobbies ...*models.Lobby) *lobbyRepoMock {
	m := &lobbyRepoMock{lobbies: make(map[string]*models.Lobby)}
	for _, lobby := range lobbies {
		m.lobbies[lobby.ID] = lobby
	}
	return m
}

func (m *lobbyRepoMock) FindByID(ctx context.Context, id string) (*models.Lobby, error) {
	lobby, ok := m.lobbies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return lobby, nil
}

func (m *lobbyRepoMock) Create(ctx context.Context, lobby *models.Lobby) error {
	if lobby.ID == "" {
		lobby.ID = uuid.NewString()
	}
	m.lobbies[lobby.ID] = lobby
	return nil
}

func (m *lobbyRepoMock) Update(ctx context.Context, lobby *models.Lobby) error {
	m.lobbies[lobby.ID] = lobby
	return nil
}

func (m *lobbyRepoMock) Delete(ctx context.Context, id string) error {
	delete(m.lobbies, id)
	return nil
}

func (m *lobbyRepoMock) List(ctx context.Context, p query.Params) ([]models.Lobby, error) {
	m.lastParams = p
	out := make([]models.Lobby, 0, len(m.lobbies))
	for _, lobby := range m.lobbies {
		out = append(out, *lobby)
	}
	return out, nil
}

func (m *lobbyRepoMock) Count(ctx context.Context, filters query.Filters) (int, error) {
	m.lastCount = filters
	return len(m.lobbies), nil
}

type algorithmResolverMock struct {
	known map[string]bool
}

func (m *algorithmResolverMock) FindByID(ctx context.Context, id string) (*models.Algorithm, error) {
	if !m.known[id] {
		return nil, sql.ErrNoRows
	}
	return &models.Algorithm{ID: id}, nil
}

func newLobbyHandlerFixture(lobbies ...*models.Lobby) (*LobbyHandler, *lobbyRepoMock, string) {
	algorithmID := uuid.NewString()
	repo := newLobbyRepoMock(lobbies...)
	svc := service.NewLobbyService(repo, &algorithmResolverMock{known: map[string]bool{algorithmID: true}}, nil, 0, nil, nil, nil, nil)
	return NewLobbyHandler(svc), repo, algorithmID
}

func testContext(t *testing.T, method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestLobbyHandlerGet(t *testing.T) {
	lobby := &models.Lobby{ID: uuid.NewString(), HostID: "host", Name: "scrim", Status: models.LobbyActive}
	h, _, _ := newLobbyHandlerFixture(lobby)

	c, w := testContext(t, http.MethodGet, "/lobbies/"+lobby.ID, "")
	c.Params = gin.Params{{Key: "id", Value: lobby.ID}}

	h.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data models.Lobby `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "scrim", body.Data.Name)
}

func TestLobbyHandlerGetNotFound(t *testing.T) {
	h, _, _ := newLobbyHandlerFixture()

	c, w := testContext(t, http.MethodGet, "/lobbies/missing", "")
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLobbyHandlerCreate(t *testing.T) {
	h, repo, algorithmID := newLobbyHandlerFixture()

	c, w := testContext(t, http.MethodPost, "/lobbies", `{"name":"scrim","algorithm_id":"`+algorithmID+`"}`)
	c.Set(middleware.ContextSubjectKey, &models.Subject{ID: "host", Role: models.RoleUser})

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, repo.lobbies, 1)
	for _, lobby := range repo.lobbies {
		assert.Equal(t, "host", lobby.HostID)
	}
}

func TestLobbyHandlerCreateInvalidBody(t *testing.T) {
	h, _, _ := newLobbyHandlerFixture()

	c, w := testContext(t, http.MethodPost, "/lobbies", `{"name":"scrim"`)
	c.Set(middleware.ContextSubjectKey, &models.Subject{ID: "host", Role: models.RoleUser})

	h.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLobbyHandlerCreateUnauthenticated(t *testing.T) {
	h, _, algorithmID := newLobbyHandlerFixture()

	c, w := testContext(t, http.MethodPost, "/lobbies", `{"name":"scrim","algorithm_id":"`+algorithmID+`"}`)

	h.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLobbyHandlerListMapsQueryParams(t *testing.T) {
	lobby := &models.Lobby{ID: uuid.NewString(), HostID: "host", Name: "scrim", Status: models.LobbyActive}
	h, repo, _ := newLobbyHandlerFixture(lobby)

	c, w := testContext(t, http.MethodGet, "/lobbies?status=archived&host_id=host&page=2&limit=5&sort=name&order=desc", "")

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "archived", repo.lastParams.Filters["status"])
	assert.Equal(t, "host", repo.lastParams.Filters["host_id"])
	assert.Equal(t, "name", repo.lastParams.SortBy)
	assert.Equal(t, "desc", repo.lastParams.SortOrder)
	assert.Equal(t, uint64(5), repo.lastParams.Limit)
	assert.Equal(t, uint64(5), repo.lastParams.Offset)

	// count sees the same filters as the listing
	assert.Equal(t, repo.lastParams.Filters, repo.lastCount)

	var body struct {
		Pagination models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Pagination.Page)
	assert.Equal(t, 5, body.Pagination.PageSize)
	assert.Equal(t, 1, body.Pagination.TotalCount)
}

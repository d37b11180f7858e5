package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// TeamHandler exposes team endpoints.
type TeamHandler struct {
	teams *service.TeamService
}

// NewTeamHandler constructs TeamHandler.
func NewTeamHandler(teams *service.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Get returns a single team.
func (h *TeamHandler) Get(c *gin.Context) {
	team, err := h.teams.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Create adds a team to a lobby. Permitted for the lobby host or a moderator.
func (h *TeamHandler) Create(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	team, err := h.teams.Create(c.Request.Context(), subjectFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, team)
}

// Update renames a team. Permitted for the lobby host or a moderator.
func (h *TeamHandler) Update(c *gin.Context) {
	var req dto.UpdateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	team, err := h.teams.Update(c.Request.Context(), subjectFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, team, nil)
}

// Delete removes a team. Permitted for the lobby host or a moderator.
func (h *TeamHandler) Delete(c *gin.Context) {
	if err := h.teams.Delete(c.Request.Context(), subjectFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List returns a filtered page of teams with the total count.
func (h *TeamHandler) List(c *gin.Context) {
	p, pagination := listParams(c)
	stringFilters(c, p.Filters, "id", "lobby_id", "name")

	teams, err := h.teams.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.teams.Count(c.Request.Context(), p.Filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination.TotalCount = total

	response.JSON(c, http.StatusOK, teams, pagination)
}

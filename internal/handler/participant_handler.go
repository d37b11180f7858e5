package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// ParticipantHandler exposes lobby membership endpoints.
type ParticipantHandler struct {
	participants *service.ParticipantService
}

// NewParticipantHandler constructs ParticipantHandler.
func NewParticipantHandler(participants *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participants: participants}
}

// Join adds the caller to a lobby.
func (h *ParticipantHandler) Join(c *gin.Context) {
	var req dto.JoinLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	participant, err := h.participants.Join(c.Request.Context(), subjectFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, participant)
}

// Leave removes a participant. Permitted for the participant themselves, the
// lobby host or a moderator.
func (h *ParticipantHandler) Leave(c *gin.Context) {
	if err := h.participants.Leave(c.Request.Context(), subjectFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignTeam moves a participant onto a team, or off any team when the payload
// carries no team id. Permitted for the lobby host or a moderator.
func (h *ParticipantHandler) AssignTeam(c *gin.Context) {
	var req dto.AssignTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	participant, err := h.participants.AssignTeam(c.Request.Context(), subjectFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participant, nil)
}

// List returns a filtered page of participants with the total count.
func (h *ParticipantHandler) List(c *gin.Context) {
	p, pagination := listParams(c)
	stringFilters(c, p.Filters, "id", "lobby_id", "user_id", "team_id")
	boolFilter(c, p.Filters, "unassigned")

	participants, err := h.participants.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.participants.Count(c.Request.Context(), p.Filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination.TotalCount = total

	response.JSON(c, http.StatusOK, participants, pagination)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// LobbyHandler exposes lobby endpoints.
type LobbyHandler struct {
	lobbies *service.LobbyService
}

// NewLobbyHandler constructs LobbyHandler.
func NewLobbyHandler(lobbies *service.LobbyService) *LobbyHandler {
	return &LobbyHandler{lobbies: lobbies}
}

// Get returns a single lobby.
func (h *LobbyHandler) Get(c *gin.Context) {
	lobby, err := h.lobbies.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lobby, nil)
}

// Create opens a lobby hosted by the caller.
func (h *LobbyHandler) Create(c *gin.Context) {
	var req dto.CreateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	lobby, err := h.lobbies.Create(c.Request.Context(), subjectFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lobby)
}

// Update edits a lobby. Permitted for the host or a moderator.
func (h *LobbyHandler) Update(c *gin.Context) {
	var req dto.UpdateLobbyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	lobby, err := h.lobbies.Update(c.Request.Context(), subjectFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lobby, nil)
}

// Delete removes a lobby. Permitted for the host or a moderator.
func (h *LobbyHandler) Delete(c *gin.Context) {
	if err := h.lobbies.Delete(c.Request.Context(), subjectFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List returns a filtered page of lobbies with the total count. Without an
// explicit status filter only open lobbies are shown.
func (h *LobbyHandler) List(c *gin.Context) {
	p, pagination := listParams(c)
	stringFilters(c, p.Filters, "id", "host_id", "algorithm_id", "name", "status", "host_username", "search")

	lobbies, err := h.lobbies.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.lobbies.Count(c.Request.Context(), p.Filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination.TotalCount = total

	response.JSON(c, http.StatusOK, lobbies, pagination)
}

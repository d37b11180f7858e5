package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// AdminHandler groups maintenance endpoints restricted to admins.
type AdminHandler struct {
	tokens  *service.TokenService
	exports *service.ExportService
}

// NewAdminHandler constructs AdminHandler. The export service may be nil when
// exports are disabled.
func NewAdminHandler(tokens *service.TokenService, exports *service.ExportService) *AdminHandler {
	return &AdminHandler{tokens: tokens, exports: exports}
}

// PurgeTokens deletes deactivated credential rows and reports how many were
// removed. A user_id query parameter narrows the purge to one account.
func (h *AdminHandler) PurgeTokens(c *gin.Context) {
	var userID *string
	if v, ok := c.GetQuery("user_id"); ok {
		userID = &v
	}

	removed, err := h.tokens.PurgeInactive(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"removed": removed}, nil)
}

// LobbyRoster streams a PDF roster of a lobby's teams and participants.
func (h *AdminHandler) LobbyRoster(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "exports not configured"))
		return
	}

	data, filename, err := h.exports.RosterPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", data)
}

// UsersExport streams a CSV of user accounts matching the same filters as the
// user listing.
func (h *AdminHandler) UsersExport(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "exports not configured"))
		return
	}

	p, _ := listParams(c)
	stringFilters(c, p.Filters, "username", "email", "search")
	intFilter(c, p.Filters, "role")
	boolFilter(c, p.Filters, "active")

	data, filename, err := h.exports.UsersCSV(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/csv", data)
}

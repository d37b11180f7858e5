package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Register creates an account with the base role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid register payload"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Login authenticates a user and opens a fresh session. Any previously issued
// credentials for the account are deactivated first.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	pair, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pair, nil)
}

// Refresh exchanges a refresh credential for a new access credential. The
// refresh credential itself stays valid.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid refresh payload"))
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, pair, nil)
}

// Logout deactivates every credential of the current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	subject := subjectFromContext(c)
	if subject == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Logout(c.Request.Context(), subject); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	subject := subjectFromContext(c)
	if subject == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	response.JSON(c, http.StatusOK, dto.SubjectResponse{
		ID:       subject.ID,
		Username: subject.Username,
		Role:     subject.Role,
	}, nil)
}

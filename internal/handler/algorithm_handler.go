package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/dto"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// AlgorithmHandler exposes pick/ban algorithm definition endpoints.
type AlgorithmHandler struct {
	algorithms *service.AlgorithmService
}

// NewAlgorithmHandler constructs AlgorithmHandler.
func NewAlgorithmHandler(algorithms *service.AlgorithmService) *AlgorithmHandler {
	return &AlgorithmHandler{algorithms: algorithms}
}

// Get returns a single algorithm definition.
func (h *AlgorithmHandler) Get(c *gin.Context) {
	algorithm, err := h.algorithms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, algorithm, nil)
}

// Create stores a new algorithm owned by the caller.
func (h *AlgorithmHandler) Create(c *gin.Context) {
	var req dto.CreateAlgorithmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	algorithm, err := h.algorithms.Create(c.Request.Context(), subjectFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, algorithm)
}

// Update edits an algorithm. Permitted for the owner or a moderator.
func (h *AlgorithmHandler) Update(c *gin.Context) {
	var req dto.UpdateAlgorithmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	algorithm, err := h.algorithms.Update(c.Request.Context(), subjectFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, algorithm, nil)
}

// Delete removes an algorithm. Permitted for the owner or a moderator.
func (h *AlgorithmHandler) Delete(c *gin.Context) {
	if err := h.algorithms.Delete(c.Request.Context(), subjectFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List returns a filtered page of algorithms with the total count.
func (h *AlgorithmHandler) List(c *gin.Context) {
	p, pagination := listParams(c)
	stringFilters(c, p.Filters, "owner_id", "name", "search")
	intFilter(c, p.Filters, "teams_count")

	algorithms, err := h.algorithms.List(c.Request.Context(), p)
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.algorithms.Count(c.Request.Context(), p.Filters)
	if err != nil {
		response.Error(c, err)
		return
	}
	pagination.TotalCount = total

	response.JSON(c, http.StatusOK, algorithms, pagination)
}

package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/middleware"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/query"
)

func subjectFromContext(c *gin.Context) *models.Subject {
	return middleware.SubjectFromContext(c)
}

// listParams parses pagination and sorting from the request. Filter values are
// added by each handler; key presence in the query string decides presence in
// the filter map, so explicit "false" or "0" values are kept as given.
func listParams(c *gin.Context) (query.Params, *models.Pagination) {
	page := 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
		page = v
	}
	limit := 20
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	p := query.Params{
		Filters:   query.Filters{},
		SortBy:    c.Query("sort"),
		SortOrder: c.DefaultQuery("order", "asc"),
		Limit:     uint64(limit),
		Offset:    uint64((page - 1) * limit),
	}
	return p, &models.Pagination{Page: page, PageSize: limit}
}

func stringFilters(c *gin.Context, filters query.Filters, keys ...string) {
	for _, key := range keys {
		if v, ok := c.GetQuery(key); ok {
			filters[key] = v
		}
	}
}

func boolFilter(c *gin.Context, filters query.Filters, key string) {
	if v, ok := c.GetQuery(key); ok {
		filters[key] = v == "true"
	}
}

func intFilter(c *gin.Context, filters query.Filters, key string) {
	if v, ok := c.GetQuery(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			filters[key] = n
		}
	}
}

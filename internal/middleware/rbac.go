package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/guard"
	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// RequireRole gates a route group behind a minimum ordinal role. Ownership
// conditions cannot be evaluated here; handlers needing owner-or-role
// semantics call the guard themselves.
func RequireRole(required models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := guard.Require(SubjectFromContext(c), required); err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AriosJentu/PickerApp-sub000/internal/models"
	"github.com/AriosJentu/PickerApp-sub000/internal/service"
	appErrors "github.com/AriosJentu/PickerApp-sub000/pkg/errors"
	"github.com/AriosJentu/PickerApp-sub000/pkg/response"
)

// ContextSubjectKey is the gin context key storing the resolved subject.
const ContextSubjectKey = "currentSubject"

// Auth protects routes by requiring a valid access credential. The bearer
// token is validated through the token lifecycle manager and the resolved
// subject is stored in the request context for downstream guards.
func Auth(tokens *service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		subject, err := tokens.Validate(c.Request.Context(), parts[1], models.TokenAccess)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextSubjectKey, subject)
		c.Next()
	}
}

// SubjectFromContext returns the subject stored by Auth, or nil.
func SubjectFromContext(c *gin.Context) *models.Subject {
	value, exists := c.Get(ContextSubjectKey)
	if !exists {
		return nil
	}
	subject, ok := value.(*models.Subject)
	if !ok {
		return nil
	}
	return subject
}

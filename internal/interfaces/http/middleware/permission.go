package middleware

import (
	"errors"
	"net/http"

	"github.com/facturo/backend/internal/application/access"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequirePermission admits the request through the authorization gate before
// the handler runs. The privilege is checked first, then the scope resolved;
// the verified scope is stored for the handler. Any failure denies the
// request.
func RequirePermission(gate *access.Gate, resource, action string, req shared.ScopeRequirement) gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, ok := SubjectFromContext(c)
		if !ok {
			abortWithDomainError(c, shared.ErrUnauthenticated)
			return
		}

		scope, err := gate.Admit(c.Request.Context(), subject, resource, action, req)
		if err != nil {
			abortWithDomainError(c, err)
			return
		}

		c.Set(ScopeKey, scope)
		c.Next()
	}
}

// GetScope retrieves the verified scope stored by RequirePermission
func GetScope(c *gin.Context) (shared.Scope, bool) {
	if v, exists := c.Get(ScopeKey); exists {
		if scope, ok := v.(shared.Scope); ok {
			return scope, true
		}
	}
	return shared.Scope{}, false
}

func abortWithDomainError(c *gin.Context, err error) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(
			domainErr.Code, domainErr.Message, GetRequestID(c)))
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal, "An unexpected error occurred", GetRequestID(c)))
}

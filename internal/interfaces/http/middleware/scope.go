package middleware

import (
	"net/http"

	"github.com/facturo/backend/internal/application/access"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Branch scope context keys and the header carrying the branch selector
const (
	BranchHeaderKey   = "X-Branch-Id"
	BranchSelectorKey = "branch_selector"
	ScopeKey          = "resolved_scope"
)

// BranchSelector extracts the branch selector header and stores it for scope
// resolution. A malformed selector is rejected immediately; a missing one is
// left for the permission layer to judge against the operation's scope
// requirement.
func BranchSelector() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(BranchHeaderKey)
		if header == "" {
			c.Next()
			return
		}

		branchID, err := uuid.Parse(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_BRANCH_ID",
					"message": "Branch selector must be a valid UUID",
				},
			})
			return
		}

		c.Set(BranchSelectorKey, branchID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithBranchID(ctx, log, branchID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetBranchSelector retrieves the parsed branch selector; nil when the
// request did not name a branch
func GetBranchSelector(c *gin.Context) *uuid.UUID {
	if v, exists := c.Get(BranchSelectorKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}

// SubjectFromContext builds the access subject of the authenticated request
func SubjectFromContext(c *gin.Context) (access.Subject, bool) {
	claims := GetJWTClaims(c)
	if claims == nil {
		return access.Subject{}, false
	}
	userID, err := claims.GetUserUUID()
	if err != nil {
		return access.Subject{}, false
	}
	organizationID, err := claims.GetOrganizationUUID()
	if err != nil {
		return access.Subject{}, false
	}
	return access.Subject{
		UserID:         userID,
		OrganizationID: organizationID,
		BranchID:       GetBranchSelector(c),
	}, true
}

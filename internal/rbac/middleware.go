package rbac

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"voicera-console/internal/auth"
)

// RequireOrg enforces the tenant invariant: every org-scoped route runs with a
// session that carries an org id. Run it after auth.Sessions.RequireSession.
// It does not check membership; the backend owns that.
func RequireOrg() gin.HandlerFunc {
	return func(c *gin.Context) {
		h, err := auth.SessionFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if h.OrgID() == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "org_id required"})
			return
		}
		c.Next()
	}
}

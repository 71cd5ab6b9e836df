package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderAuthorizerContext carries the signed authorizer context between stages.
const HeaderAuthorizerContext = "X-Authorizer-Context"

// OptionalContextToken verifies the context token when present and stores the
// authorizer context on the request. A missing header continues with an empty
// context; an invalid one is rejected.
func OptionalContextToken(m *Manager, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderAuthorizerContext))
		if raw == "" {
			c.Next()
			return
		}
		if m == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorizer context"})
			return
		}

		authz, err := m.Verify(raw, now())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorizer context"})
			return
		}

		c.Request = c.Request.WithContext(WithAuthorizerContext(c.Request.Context(), authz))
		c.Set("principal_id", authz.PrincipalID())

		c.Next()
	}
}

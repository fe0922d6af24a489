package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	// AdminSessionCookie is the opaque marker issued on login. Its 24h
	// TTL is set at issuance; the gate itself performs no expiry check.
	AdminSessionCookie = "admin_session"

	// AdminBypassParam is the query parameter carrying the per-request
	// shared-secret bypass key.
	AdminBypassParam = "key"

	adminSessionMaxAge = 24 * 60 * 60 // seconds
)

// adminGateMiddleware gates every request under the admin path. A present
// session cookie passes unconditionally. Without one, a query key equal to
// the configured secret passes for this request only; no session is issued.
// Anything else is masked as a plain not-found so the protected path is
// indistinguishable from a missing route. The gate never mutates state.
func adminGateMiddleware(adminPassword string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := c.Cookie(AdminSessionCookie); err == nil {
			c.Next()
			return
		}

		if key := c.Query(AdminBypassParam); key != "" && key == adminPassword {
			c.Next()
			return
		}

		c.String(http.StatusNotFound, "404 page not found")
		c.Abort()
	}
}

package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"msgsvc/types"
)

// XUser is the header the gateway puts the authenticated user's JSON in.
const XUser = "X-User"

// ContextKey is where XUserMiddleware stores the requester's identity.
const ContextKey = "requester"

const (
	StatusXUserRequired  = "authenticated X-User field not present in header"
	StatusAuthorRequired = "error must be creator of this entity to alter/delete it"
)

// XUserMiddleware rejects requests without an asserted identity. The header is
// trusted as-is; the gateway has already authenticated the user.
func XUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader(XUser))
		if header == "" {
			c.String(http.StatusUnauthorized, StatusXUserRequired)
			c.Abort()
			return
		}

		c.Set(ContextKey, types.Identity(header))
		c.Next()
	}
}

// Requester returns the identity XUserMiddleware stored for this request.
func Requester(c *gin.Context) types.Identity {
	v, _ := c.Get(ContextKey)
	id, _ := v.(types.Identity)
	return id
}

// RequireCreator writes a 403 and aborts unless the requester created the entity.
func RequireCreator(c *gin.Context, creator types.Identity) bool {
	if Requester(c).SameAs(creator) {
		return true
	}
	c.String(http.StatusForbidden, StatusAuthorRequired)
	c.Abort()
	return false
}

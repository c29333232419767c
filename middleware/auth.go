// auth.go - JWT authentication middleware
//
// The middleware validates the bearer token, then loads the user to make sure
// the account still exists and is not soft-deleted. The identity placed in the
// context carries the stored role, so a role change takes effect immediately.

package middleware

import (
	"errors"
	"strings"

	"course-management-backend/apierr"
	"course-management-backend/auth"
	"course-management-backend/authz"
	"course-management-backend/repository"
	"course-management-backend/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthMiddleware rejects requests without a valid bearer token with 401.
func AuthMiddleware(tokens *auth.TokenManager, users repository.UserRepo) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Error(c, apierr.Unauthorized("missing or invalid token"))
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			response.Error(c, apierr.Unauthorized("invalid token"))
			return
		}
		userID, _ := claims.UserID() // validated by Parse

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				response.Error(c, apierr.Unauthorized("user not found"))
				return
			}
			response.Error(c, err)
			return
		}

		c.Set(identityKey, authz.Identity{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// IdentityFrom returns the identity stored by AuthMiddleware.
func IdentityFrom(c *gin.Context) (authz.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return authz.Identity{}, false
	}
	id, ok := v.(authz.Identity)
	return id, ok
}

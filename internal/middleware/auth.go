package middleware

import (
	"net/http"
	"strings"

	domainUser "dojo-admin/internal/domain/user"
	appErrors "dojo-admin/pkg/errors"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UserIDKey = "userID"
	EmailKey  = "email"
	RoleKey   = "role"
)

// AuthMiddleware only lets requests through that carry a valid bearer token.
// It attaches the caller to the gin context and to the request context, and
// never looks at the role.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.ErrUnauthorized.Error())
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.ErrInvalidToken.Error())
			c.Abort()
			return
		}

		claims, err := tokens.Validate(strings.TrimSpace(parts[1]))
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, appErrors.ErrInvalidToken.Error())
			c.Abort()
			return
		}

		identity := domainUser.Identity{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   domainUser.Role(claims.Role),
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(EmailKey, identity.Email)
		c.Set(RoleKey, string(identity.Role))
		c.Request = c.Request.WithContext(domainUser.WithIdentity(c.Request.Context(), identity))

		c.Next()
	}
}

// GetIdentity returns the caller set by AuthMiddleware.
func GetIdentity(c *gin.Context) (domainUser.Identity, bool) {
	return domainUser.IdentityFromContext(c.Request.Context())
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	userID, ok := value.(uuid.UUID)
	return userID, ok
}

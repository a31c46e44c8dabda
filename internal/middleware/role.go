package middleware

import (
	"net/http"

	domainUser "dojo-admin/internal/domain/user"
	"dojo-admin/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(allowedRoles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(RoleKey)
		if !exists {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		userRole, _ := role.(string)

		for _, allowedRole := range allowedRoles {
			if userRole == string(allowedRole) {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin)
}

func StaffOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin, domainUser.RoleTeacher)
}

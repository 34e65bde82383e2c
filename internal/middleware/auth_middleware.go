// auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"freshbasket-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// Claves bajo las que el principal queda guardado en el contexto gin.
const (
	CtxUserID  = "userID"
	CtxAdminID = "adminID"
	CtxIsAdmin = "isAdmin"
)

// Middleware que valida el token y guarda el principal en el contexto.
// Acepta tokens de usuario y de admin; AdminOnly filtra después.
func AuthMiddleware(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		token = strings.TrimSpace(token)
		principal, err := authService.ValidateToken(token)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		if principal.IsAdmin {
			c.Set(CtxAdminID, principal.AdminID)
		} else {
			c.Set(CtxUserID, principal.UserID)
		}
		c.Set(CtxIsAdmin, principal.IsAdmin)
		c.Next()
	}
}

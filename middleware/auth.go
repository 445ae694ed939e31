package middleware

import (
	"net/http"
	"storefront/models"
	"storefront/utils"
	"strings"

	"github.com/gin-gonic/gin"
)

// bearerClaims pulls the Bearer token off the request and validates it.
func bearerClaims(c *gin.Context) (*utils.Claims, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Missing or invalid bearer token",
			})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", claims.Role)
		c.Next()
	}
}

func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, models.ErrorResponse{
				Success: false,
				Message: "Admin role required",
			})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"puntoventa-be/internal/merchant"

	"github.com/gin-gonic/gin"
)

const merchantIDKey = "merchantID"

// RequireMerchant rejects requests without a valid bearer token and puts the
// authenticated merchant id on the gin context.
func RequireMerchant(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "Unauthorized", "message": "missing bearer token"},
			})
			return
		}

		claims, err := merchant.ParseJWT(jwtSecret, strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"kind": "Unauthorized", "message": "invalid token"},
			})
			return
		}

		c.Set(merchantIDKey, claims.MerchantID)
		c.Next()
	}
}

// MerchantID returns the authenticated merchant id set by RequireMerchant.
func MerchantID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(merchantIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	userRepo "gatepass/database/repository/user"
	"gatepass/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// AuthCachePrefix keys the session-token hashes in the auth cache.
const AuthCachePrefix = "authToken:"

// JWTAuthMiddleware validates the bearer session token and sets "userID"
// in the context. Sessions are revocable: the token hash must still be
// present in the auth cache.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		authCache := utils.GetAuthCacheClient()

		cachedHash, err := authCache.Get(ctx, AuthCachePrefix+userID).Result()
		if err == redis.Nil || (err == nil && cachedHash != computedHash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session expired or revoked"})
			return
		}
		if err != nil && err != redis.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}

		// Refresh the session TTL on use.
		_ = authCache.Expire(ctx, AuthCachePrefix+userID, time.Hour).Err()

		c.Set("userID", userID)
		c.Next()
	}
}

// RequireHostMiddleware gates scanner and reporting endpoints to host
// accounts. Must run after JWTAuthMiddleware.
func RequireHostMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("userID")
		user, err := users.GetByID(userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication error"})
			return
		}
		if !user.IsHost {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not authorized to perform check-ins"})
			return
		}
		c.Next()
	}
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SadmanRahman12/GreenZen/utils"
)

const (
	// ContextUserIDKey is the key used to store the authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUserNameKey stores the user's display name inside Gin context.
	ContextUserNameKey = "user_name"
	// ContextIsAdminKey stores the admin flag inside Gin context.
	ContextIsAdminKey = "is_admin"
)

// extractToken reads the session token from the request. The historical
// client sends it in x-auth-token; Authorization: Bearer is accepted too.
func extractToken(ctx *gin.Context) string {
	if token := strings.TrimSpace(ctx.GetHeader("x-auth-token")); token != "" {
		return token
	}
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := extractToken(ctx)
		if token == "" {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "no token, authorization denied")
			ctx.Abort()
			return
		}

		if utils.IsTokenBlacklisted(token) {
			utils.Error(ctx, http.StatusUnauthorized, 40102, "token revoked")
			ctx.Abort()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, 40103, "token is not valid")
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUserNameKey, claims.Name)
		ctx.Set(ContextIsAdminKey, claims.IsAdmin)
		ctx.Next()
	}
}

// AdminRequired ensures the request is authenticated and carries the admin
// flag. Must run after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		isAdmin, ok := ctx.Get(ContextIsAdminKey)
		if !ok || isAdmin != true {
			utils.Error(ctx, http.StatusForbidden, 40301, "access denied, not an admin")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

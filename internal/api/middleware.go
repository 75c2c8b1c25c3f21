package api

import (
	"net/http"
	"strings"

	"strength-tracker/internal/models"

	"github.com/gin-gonic/gin"
)

const claimsKey = "authClaims"

// RequireAuth validates the Bearer token and stashes its claims on the
// context. Only the websocket upgrade may pass the token as a query
// parameter, since browsers cannot set headers on upgrade requests; other
// routes would leak tokens into access logs.
func (h *APIHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
			raw = strings.TrimPrefix(header, "Bearer ")
		} else if strings.HasSuffix(c.FullPath(), "/live-stream") {
			raw = c.Query("token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		claims, err := h.parseToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireView allows admins through unconditionally and everyone else only
// when their permission set contains one of the named views.
func (h *APIHandler) RequireView(views ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if claims.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, view := range views {
			for _, perm := range claims.Permissions {
				if perm == view {
					c.Next()
					return
				}
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "view not permitted"})
	}
}

// RequireAdmin guards the user-management and ingest surfaces.
func (h *APIHandler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil || claims.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := value.(*Claims)
	return claims
}

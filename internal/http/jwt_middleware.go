package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"unitex/internal/service"
)

const authClaimsKey = "auth_claims"

// TokenParser valida credenciales bearer. Lo implementa service.JWTService.
type TokenParser interface {
	Parse(token string) (service.Claims, error)
}

// JWTAuthMiddleware valida el bearer token y guarda los claims en el contexto.
func JWTAuthMiddleware(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if parser == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "jwt not configured", "kind": service.KindUnexpected})
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token", "kind": service.KindUnauthorized})
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		claims, err := parser.Parse(token)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, service.ErrJWTExpired) {
				msg = "token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "kind": service.KindUnauthorized})
			return
		}

		c.Set(authClaimsKey, claims)
		c.Next()
	}
}

// GetAuthClaims obtiene claims de JWT desde el contexto.
func GetAuthClaims(c *gin.Context) (service.Claims, bool) {
	val, ok := c.Get(authClaimsKey)
	if !ok {
		return service.Claims{}, false
	}
	claims, ok := val.(service.Claims)
	return claims, ok
}

// currentUserID devuelve la identidad autenticada; responde 401 si no hay claims.
func currentUserID(c *gin.Context) (int64, bool) {
	claims, ok := GetAuthClaims(c)
	if !ok || claims.UserID <= 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "kind": service.KindUnauthorized})
		return 0, false
	}
	return claims.UserID, true
}

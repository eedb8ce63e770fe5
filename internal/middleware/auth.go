package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"palika/internal/authz"
	"palika/internal/config"
	"palika/internal/domain"
)

const (
	ContextKeyConsumerID = "consumer_id"
	ContextKeyRole       = "role"
)

// Claims is the token payload issued by the municipal SSO. This service
// only verifies tokens; it never issues them.
type Claims struct {
	ConsumerID uuid.UUID `json:"consumer_id"`
	Role       string    `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware returns Gin middleware that validates SSO tokens and
// injects the caller's identity and role.
func AuthMiddleware(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "missing or invalid authorization header")
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := verifyToken(token, cfg)
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyConsumerID, claims.ConsumerID)
		c.Set(ContextKeyRole, claims.Role)
		c.Next()
	}
}

func verifyToken(token string, cfg config.JWTConfig) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.ConsumerID == uuid.Nil {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// RequireRole returns middleware that checks the caller's role against
// the allowed roles.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr, exists := c.Get(ContextKeyRole)
		if !exists {
			abortForbidden(c, "role not found in context")
			return
		}

		role := domain.Role(roleStr.(string))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abortForbidden(c, "insufficient permissions")
	}
}

// GetActor extracts the authenticated caller from the Gin context.
func GetActor(c *gin.Context) (authz.Actor, error) {
	idVal, exists := c.Get(ContextKeyConsumerID)
	if !exists {
		return authz.Actor{}, domain.ErrUnauthorized
	}
	roleVal, exists := c.Get(ContextKeyRole)
	if !exists {
		return authz.Actor{}, domain.ErrUnauthorized
	}
	return authz.Actor{
		ID:   idVal.(uuid.UUID),
		Role: domain.Role(roleVal.(string)),
	}, nil
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": msg},
	})
}

func abortForbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error":   gin.H{"code": "FORBIDDEN", "message": msg},
	})
}

package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"storefront/internal/service"
	"storefront/internal/transport/http/dto"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Gin context keys for user info.
const (
	CtxUserID   = "user_id"
	CtxUserRole = "user_role"
)

type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired validates the Bearer token and injects the user id and role
// into both the gin context and the request context the services read.
func AuthRequired(secret string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := ExtractBearerToken(c.GetHeader("Authorization"))
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("missing or invalid Authorization header"))
			return
		}

		var cl claims
		parsed, err := jwt.ParseWithClaims(token, &cl, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(secret), nil
		})
		if err != nil || !parsed.Valid {
			if err != nil {
				log.Warn("token parse failed", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token"))
			return
		}

		userID, err := uuid.Parse(cl.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid token subject"))
			return
		}

		role := service.Role(cl.Role)
		if role != service.RoleAdmin {
			role = service.RoleCustomer
		}

		c.Set(CtxUserID, userID.String())
		c.Set(CtxUserRole, string(role))

		ctx := service.WithUserID(c.Request.Context(), userID)
		ctx = service.WithRole(ctx, role)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ExtractBearerToken pulls the token out of the Authorization header.
func ExtractBearerToken(authz string) (string, bool) {
	if authz == "" {
		return "", false
	}
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

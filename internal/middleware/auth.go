package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Context keys set by the auth guards.
const (
	UserIDKey = "userId"
	RoleKey   = "role"
)

// AuthGuard validates the bearer token and, when roles are given, requires
// the token's role to be one of them. The caller's id and role are stored
// in the gin context.
func AuthGuard(secret string, lg *zap.Logger, allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			lg.Debug("Missing token", zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			lg.Debug("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		userID, role, err := parseToken(secret, parts[1])
		if err != nil {
			lg.Debug("Token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if len(allowedRoles) > 0 && !hasRole(role, allowedRoles) {
			lg.Info("Role not allowed",
				zap.String("user_id", userID.Hex()),
				zap.String("role", role),
			)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(RoleKey, role)
		c.Next()
	}
}

// UserAuth accepts any signed-in caller.
func UserAuth(secret string, lg *zap.Logger) gin.HandlerFunc {
	return AuthGuard(secret, lg)
}

func AdminAuth(secret string, lg *zap.Logger) gin.HandlerFunc {
	return AuthGuard(secret, lg, "admin")
}

func parseToken(secret, raw string) (primitive.ObjectID, string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return primitive.NilObjectID, "", errors.Wrap(err, "parse")
	}
	if !token.Valid {
		return primitive.NilObjectID, "", errors.New("token invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return primitive.NilObjectID, "", errors.New("claims invalid")
	}

	userIDValue, _ := claims["userId"].(string)
	if strings.TrimSpace(userIDValue) == "" {
		return primitive.NilObjectID, "", errors.New("userId claim missing")
	}
	userID, err := primitive.ObjectIDFromHex(userIDValue)
	if err != nil {
		return primitive.NilObjectID, "", errors.Wrap(err, "userId claim")
	}

	role, _ := claims["role"].(string)
	return userID, role, nil
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

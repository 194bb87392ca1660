package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
)

// Pinger is satisfied by *mongo.Client.
type Pinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

func handlePanic(c *gin.Context, lg *zap.Logger, route string) {
	if r := recover(); r != nil {
		lg.Error("Panic recovered", zap.String("route", route), zap.Any("panic", r), zap.Stack("stack"))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db Pinger) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Ping(checkCtx, readpref.Primary())
}

// DatabaseGuard answers 503 while the primary is unreachable.
func DatabaseGuard(db Pinger, lg *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			lg.Warn("Database ping failed", zap.Error(err))
			respondWithError(c, lg, http.StatusServiceUnavailable, c.FullPath(), "database unavailable")
			return
		}
		c.Next()
	}
}

func respondWithError(c *gin.Context, lg *zap.Logger, status int, route string, message string) {
	lg.Debug("Returning error",
		zap.String("route", route),
		zap.Int("status", status),
		zap.String("message", message),
	)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// respondAppError maps a service error onto its status. Unclassified errors
// are logged and hidden from the client.
func respondAppError(c *gin.Context, lg *zap.Logger, route string, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		lg.Error("Request failed",
			zap.String("route", route),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)),
			zap.Error(err),
		)
	}
	respondWithError(c, lg, status, route, apperr.PublicMessage(err))
}

func respondValidationError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		details := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			field := lowerCamel(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				details = append(details, fmt.Sprintf("%s is required", field))
			default:
				details = append(details, fmt.Sprintf("%s is invalid", field))
			}
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": details,
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid body", "details": err.Error()})
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// pathObjectID parses the named path parameter, answering 400 when it is
// not an ObjectID.
func pathObjectID(c *gin.Context, lg *zap.Logger, route, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	if err != nil {
		respondWithError(c, lg, http.StatusBadRequest, route, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// currentUserID returns the caller set by the auth middleware.
func currentUserID(c *gin.Context, lg *zap.Logger, route string) (primitive.ObjectID, bool) {
	value, ok := c.Get(middleware.UserIDKey)
	if !ok {
		respondWithError(c, lg, http.StatusUnauthorized, route, "unauthorized")
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	if !ok {
		respondWithError(c, lg, http.StatusUnauthorized, route, "unauthorized")
		return primitive.NilObjectID, false
	}
	return id, true
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(middleware.RoleKey) == "admin"
}

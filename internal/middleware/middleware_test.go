package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func guardedRouter(guard gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/x", guard, func(c *gin.Context) {
		id := c.MustGet(UserIDKey).(primitive.ObjectID)
		c.JSON(http.StatusOK, gin.H{"userId": id.Hex(), "role": c.GetString(RoleKey)})
	})
	return r
}

func doGet(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserAuth(t *testing.T) {
	r := guardedRouter(UserAuth(testSecret, zap.NewNop()))
	userID := primitive.NewObjectID()
	exp := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name   string
		auth   string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"not bearer", "Token abc", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", jwt.MapClaims{"userId": userID.Hex(), "exp": exp}), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"userId": userID.Hex(), "exp": time.Now().Add(-time.Hour).Unix()}), http.StatusUnauthorized},
		{"bad user id", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"userId": "nope", "exp": exp}), http.StatusUnauthorized},
		{"valid", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"userId": userID.Hex(), "role": "user", "exp": exp}), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.auth != "" {
				h.Set("Authorization", tt.auth)
			}
			w := doGet(r, h)
			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, w.Body.String(), userID.Hex())
			}
		})
	}
}

func TestAdminAuthRejectsUserRole(t *testing.T) {
	r := guardedRouter(AdminAuth(testSecret, zap.NewNop()))
	userID := primitive.NewObjectID()
	exp := time.Now().Add(time.Hour).Unix()

	h := http.Header{}
	h.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"userId": userID.Hex(), "role": "user", "exp": exp}))
	assert.Equal(t, http.StatusForbidden, doGet(r, h).Code)

	h.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{"userId": userID.Hex(), "role": "admin", "exp": exp}))
	w := doGet(r, h)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	w := doGet(r, nil)
	generated := w.Header().Get(RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	h := http.Header{}
	h.Set(RequestIDHeader, "abc-123")
	w = doGet(r, h)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(zap.NewNop()))
	r.GET("/x", func(c *gin.Context) {
		panic("boom")
	})

	w := doGet(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/holidaze/service-booking/internal/common/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.String(http.StatusOK, id.String())
	})...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()
	token, err := jwtManager.GenerateAccessToken(userID, "a@b.c", auth.RoleCustomer)
	require.NoError(t, err)

	r := newRouter(AuthMiddleware(jwtManager))

	assert.Equal(t, http.StatusUnauthorized, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "garbage").Code)

	w := do(r, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Minute, time.Hour)
	r := newRouter(OptionalAuthMiddleware(jwtManager))

	w := do(r, "garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uuid.Nil.String(), w.Body.String())
}

func TestRequireRole(t *testing.T) {
	jwtManager := auth.NewJWTManager("secret", time.Minute, time.Hour)
	r := newRouter(AuthMiddleware(jwtManager), RequireRole(auth.RoleAdmin))

	customer, err := jwtManager.GenerateAccessToken(uuid.New(), "a@b.c", auth.RoleCustomer)
	require.NoError(t, err)
	admin, err := jwtManager.GenerateAccessToken(uuid.New(), "a@b.c", auth.RoleAdmin)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, do(r, customer).Code)
	assert.Equal(t, http.StatusOK, do(r, admin).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := newRouter(RateLimitMiddleware(2, zap.NewNop()))

	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(r, "").Code)
}

func TestIPLimiters_EvictsIdleClients(t *testing.T) {
	clock := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newIPLimiters(rate.Every(time.Second), 1, 10*time.Minute)
	store.now = func() time.Time { return clock }
	store.lastSweep = clock

	first := store.get("10.0.0.1")
	store.get("10.0.0.2")
	assert.Equal(t, 2, store.len())

	clock = clock.Add(5 * time.Minute)
	assert.Same(t, first, store.get("10.0.0.1"))

	// 10.0.0.2 has now been idle for a full TTL; 10.0.0.1 has not.
	clock = clock.Add(5 * time.Minute)
	store.get("10.0.0.3")
	assert.Equal(t, 2, store.len())
	assert.Same(t, first, store.get("10.0.0.1"))

	clock = clock.Add(20 * time.Minute)
	store.get("10.0.0.4")
	assert.Equal(t, 1, store.len())
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newRouter(RequestIDMiddleware())

	w := do(r, "")
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))
}

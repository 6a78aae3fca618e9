package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"attendify/internal/middleware"
	"attendify/internal/shared/contextutil"
)

type fakeRBAC struct {
	allowed bool
	err     error
}

func (f *fakeRBAC) Enforce(role, resource, action string) (bool, error) {
	return f.allowed, f.err
}

func setAuthContext(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserIDKey, userID)
		c.Set(middleware.CtxRoleKey, role)
		c.Next()
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsGarbageToken(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", middleware.AuthMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(rbac *fakeRBAC, role string) *httptest.ResponseRecorder {
		r := gin.New()
		r.GET("/resource",
			setAuthContext("u1", role),
			middleware.RBACAuthorize(rbac, "client", "read"),
			func(c *gin.Context) { c.Status(http.StatusOK) },
		)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/resource", nil))
		return w
	}

	t.Run("allowed", func(t *testing.T) {
		w := run(&fakeRBAC{allowed: true}, "viewer")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		w := run(&fakeRBAC{allowed: false}, "viewer")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "client:read")
	})

	t.Run("missing role", func(t *testing.T) {
		w := run(&fakeRBAC{allowed: true}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("enforcer error", func(t *testing.T) {
		w := run(&fakeRBAC{err: errors.New("model broken")}, "viewer")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestRateLimitByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/limited",
		setAuthContext("u1", "viewer"),
		middleware.RateLimitByUser(1, 1),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/limited", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/limited", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestContextLoggerPropagatesRequestScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.GET("/items",
		setAuthContext("user-1", "viewer"),
		middleware.ContextLogger(zap.New(core)),
		func(c *gin.Context) {
			ctx := c.Request.Context()
			contextutil.GetLogger(ctx, nil).Info("listing items")
			c.Status(http.StatusOK)
		},
	)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.Header.Set("X-Request-ID", "req-42")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "user-1", fields["user_id"])
}

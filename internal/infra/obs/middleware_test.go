package obs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestIDGeneratedAndRecoverable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromCtx string
	router := gin.New()
	router.Use(Middleware{}.RequestID())
	router.GET("/", func(c *gin.Context) {
		fromCtx = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, fromCtx)
	require.Equal(t, fromCtx, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDHonorsCallerHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var fromCtx string
	router := gin.New()
	router.Use(Middleware{}.RequestID())
	router.GET("/", func(c *gin.Context) {
		fromCtx = RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-supplied")
	router.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "caller-supplied", fromCtx)
}

func TestRequestIDFromBareContext(t *testing.T) {
	t.Parallel()

	require.Empty(t, RequestIDFromContext(context.Background()))
}

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func check(t *testing.T, deps map[string]Pinger) (int, Response) {
	t.Helper()

	r := gin.New()
	r.GET("/health", Handler(deps))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	return w.Code, resp
}

func TestHandler_Healthy(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })

	code, resp := check(t, map[string]Pinger{"postgres": ok})

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "ok", resp.Checks["postgres"])
}

func TestHandler_Degraded(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	code, resp := check(t, map[string]Pinger{"postgres": ok, "redis": down})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unreachable", resp.Checks["redis"])
}

func TestHandler_NoDependencies(t *testing.T) {
	code, resp := check(t, nil)

	assert.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.Checks)
}

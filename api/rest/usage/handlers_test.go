package usage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/quota"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type plans map[string]string

func (p plans) GetPlan(_ context.Context, id string) (string, error) { return p[id], nil }

type guestCookie struct{}

func (guestCookie) Resolve(*gin.Context) (string, error) { return "guest-1", nil }

func setup(t *testing.T, gate *quota.Gate) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "usage-test-secret")

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), gate, actor.NewResolver(plans{"u-1": "PREMIUM"}, guestCookie{}))

	return r
}

func get(t *testing.T, r *gin.Engine, path, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)

	if userID != "" {
		token, err := auth.GenerateJWT(userID, userID+"@example.ge", false)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestGetUsage_Guest(t *testing.T) {
	gate := quota.NewGate(quota.NewMemoryStore())
	require.NoError(t, gate.AddUsage(context.Background(), quota.Guest("guest-1"), 500))

	w := get(t, setup(t, gate), "/api/v1/usage", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, quota.ActorGuest, resp.ActorType)
	assert.Equal(t, 500, resp.Usage.Daily)
	assert.Equal(t, 1000, resp.Remaining.Daily)
	assert.Equal(t, 9500, resp.Remaining.Monthly)
	assert.Equal(t, 2, resp.Remaining.Images)
	assert.False(t, resp.TrackingDisabled)
}

func TestGetUsage_UserNeverConsumes(t *testing.T) {
	gate := quota.NewGate(quota.NewMemoryStore())
	r := setup(t, gate)

	for range 3 {
		w := get(t, r, "/api/v1/usage", "u-1")
		require.Equal(t, http.StatusOK, w.Code)

		var resp Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

		assert.Equal(t, quota.PlanPremium, resp.Plan)
		assert.Equal(t, quota.Limits{Daily: 25000, Monthly: 300000, Images: 60}, resp.Limits)
		assert.Equal(t, quota.Usage{}, resp.Usage)
	}
}

func TestGetUsage_TrackingDisabled(t *testing.T) {
	w := get(t, setup(t, quota.NewGate(nil)), "/api/v1/usage", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.TrackingDisabled)
	assert.Equal(t, 1500, resp.Remaining.Daily)
}

func TestGetHistory(t *testing.T) {
	day := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store := quota.NewMemoryStore()
	gate := quota.NewGate(store, quota.WithClock(func() time.Time { return day }))
	require.NoError(t, gate.AddUsage(context.Background(), quota.User("u-1", quota.PlanPremium), 42))

	r := setup(t, gate)

	assert.Equal(t, http.StatusUnauthorized, get(t, r, "/api/v1/usage/history", "").Code)

	w := get(t, r, "/api/v1/usage/history?days=7", "u-1")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 1)
	assert.Equal(t, "2025-03-10", resp.Days[0].Date)
	assert.Equal(t, 42, resp.Days[0].Tokens)
}

package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/payments"
	"codeberg.org/kartuli/server/kartuli/users"
)

const userID = "4b0c7f8e-3f7a-4c59-9d3e-5a1f7d2b8c10"

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	users map[string]*users.User
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*users.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}

	return nil, users.ErrNotFound
}

func (f *fakeUsers) UpdatePlan(_ context.Context, id, plan string) (*users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}

	u.Plan = plan
	return u, nil
}

func (f *fakeUsers) List(context.Context, int, int) ([]users.User, error) {
	out := []users.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}

	return out, nil
}

func (f *fakeUsers) CountByPlan(context.Context) (*users.PlanCounts, error) {
	counts := &users.PlanCounts{}
	for _, u := range f.users {
		counts.Total++
		if u.Plan == users.PlanPremium {
			counts.Premium++
		} else {
			counts.Free++
		}
	}

	return counts, nil
}

type fakeOrders struct{}

func (fakeOrders) List(context.Context, int, int) ([]payments.Order, error) {
	return []payments.Order{{ID: "o-1", Status: payments.StatusCompleted, Amount: 19.99}}, nil
}

func (fakeOrders) ListByUser(context.Context, string, int) ([]payments.Order, error) {
	return []payments.Order{}, nil
}

func (fakeOrders) Stats(context.Context) (*payments.Stats, error) {
	return &payments.Stats{Total: 1, Completed: 1, Revenue: 19.99}, nil
}

func setup(t *testing.T) (*gin.Engine, *fakeUsers, *quota.Gate) {
	t.Helper()
	t.Setenv("JWT_SECRET", "admin-secret")

	repo := &fakeUsers{users: map[string]*users.User{
		userID: {ID: userID, Email: "nino@example.ge", Plan: users.PlanFree},
	}}
	gate := quota.NewGate(quota.NewMemoryStore())

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), repo, fakeOrders{}, gate)

	return r, repo, gate
}

func do(t *testing.T, r *gin.Engine, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	token, err := auth.GenerateJWT("admin-user", "admin@example.ge", admin)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestAdmin_RequiresAdminClaim(t *testing.T) {
	r, _, _ := setup(t)

	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodGet, "/api/v1/admin/users", "", false).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/api/v1/admin/users", "", true).Code)
}

func TestSetPlan(t *testing.T) {
	r, repo, _ := setup(t)

	w := do(t, r, http.MethodPut, "/api/v1/admin/users/"+userID+"/plan", `{"plan":"PREMIUM"}`, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, users.PlanPremium, repo.users[userID].Plan)

	w = do(t, r, http.MethodPut, "/api/v1/admin/users/"+userID+"/plan", `{"plan":"GOLD"}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPut, "/api/v1/admin/users/9b0c7f8e-3f7a-4c59-9d3e-5a1f7d2b8c10/plan", `{"plan":"FREE"}`, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetUserUsage_UsesCurrentPlan(t *testing.T) {
	r, repo, gate := setup(t)
	require.NoError(t, gate.AddUsage(context.Background(), quota.User(userID, quota.PlanFree), 7000))

	w := do(t, r, http.MethodGet, "/api/v1/admin/users/"+userID+"/usage", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp UserUsageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7000, resp.Usage.Daily)
	assert.Equal(t, 500, resp.Remaining.Daily)

	repo.users[userID].Plan = users.PlanPremium

	w = do(t, r, http.MethodGet, "/api/v1/admin/users/"+userID+"/usage", "", true)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 18000, resp.Remaining.Daily, "limits follow the plan at request time")
}

func TestGetStats(t *testing.T) {
	r, _, _ := setup(t)

	w := do(t, r, http.MethodGet, "/api/v1/admin/stats", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Users.Total)
	assert.Equal(t, 1, resp.Payments.Completed)
	assert.False(t, resp.TrackingDisabled)
}

func TestListPayments(t *testing.T) {
	r, _, _ := setup(t)

	w := do(t, r, http.MethodGet, "/api/v1/admin/payments?limit=10", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"revenue":19.99`)
}

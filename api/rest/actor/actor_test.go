package actor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/users"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type plans map[string]string

func (p plans) GetPlan(_ context.Context, userID string) (string, error) {
	plan, ok := p[userID]
	if !ok {
		return "", users.ErrNotFound
	}

	return plan, nil
}

type guests struct {
	id  string
	err error
}

func (g guests) Resolve(*gin.Context) (string, error) {
	return g.id, g.err
}

func newContext(userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if userID != "" {
		c.Set("user_id", userID)
	}

	return c, w
}

func TestResolve_User(t *testing.T) {
	r := NewResolver(plans{"u-1": "PREMIUM", "u-2": "legacy"}, guests{id: "g-1"})

	c, _ := newContext("u-1")
	a, err := r.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, quota.User("u-1", quota.PlanPremium), a)

	c, _ = newContext("u-2")
	a, err = r.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, quota.PlanFree, a.Plan, "unknown plans meter as FREE")
}

func TestResolve_Guest(t *testing.T) {
	r := NewResolver(plans{}, guests{id: "g-1"})

	c, _ := newContext("")
	a, err := r.Resolve(c)
	require.NoError(t, err)
	assert.Equal(t, quota.Guest("g-1"), a)
}

func TestMustResolve_DeletedUser(t *testing.T) {
	r := NewResolver(plans{}, guests{id: "g-1"})

	c, w := newContext("gone")
	_, ok := r.MustResolve(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMustResolve_GuestCookieFailure(t *testing.T) {
	r := NewResolver(plans{}, guests{err: errors.New("cookie store broken")})

	c, w := newContext("")
	_, ok := r.MustResolve(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

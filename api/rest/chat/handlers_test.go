package chat

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

	"codeberg.org/kartuli/server/api/rest/actor"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/flowise"
	"codeberg.org/kartuli/server/internal/quota"
	"codeberg.org/kartuli/server/kartuli/chat"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type predictor struct {
	err error
}

func (p predictor) Chat(context.Context, string, string, []flowise.HistoryMessage) (*flowise.Prediction, error) {
	if p.err != nil {
		return nil, p.err
	}

	return &flowise.Prediction{Text: "გამარჯობა!"}, nil
}

func (p predictor) GenerateImage(context.Context, string, string) (*flowise.Prediction, error) {
	if p.err != nil {
		return nil, p.err
	}

	return &flowise.Prediction{Artifacts: []flowise.Artifact{{Type: "png", Data: "AAAA"}}}, nil
}

type guestCookie struct{}

func (guestCookie) Resolve(*gin.Context) (string, error) { return "guest-1", nil }

type noUsers struct{}

func (noUsers) GetPlan(context.Context, string) (string, error) { return "FREE", nil }

func newRouter(t *testing.T, gate *quota.Gate, p predictor) *gin.Engine {
	t.Helper()

	svc := chat.NewService(gate, p, nil)
	resolver := actor.NewResolver(noUsers{}, guestCookie{})

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), svc, resolver)

	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestChatHandler_Success(t *testing.T) {
	gate := quota.NewGate(quota.NewMemoryStore())
	r := newRouter(t, gate, predictor{})

	w := post(r, "/api/v1/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reply chat.Reply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply))

	assert.Equal(t, "გამარჯობა!", reply.Text)
	assert.Positive(t, reply.Tokens.Total)
	assert.Equal(t, 1500, reply.Limits.Daily)

	usage, err := gate.Usage(context.Background(), quota.Guest("guest-1"))
	require.NoError(t, err)
	assert.Equal(t, reply.Tokens.Total, usage.Daily)
}

func TestChatHandler_QuotaExceeded(t *testing.T) {
	gate := quota.NewGate(quota.NewMemoryStore())
	require.NoError(t, gate.AddUsage(context.Background(), quota.Guest("guest-1"), 1500))

	w := post(newRouter(t, gate, predictor{}), "/api/v1/chat", `{"message":"hello"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var body struct {
		Error  string       `json:"error"`
		Usage  quota.Usage  `json:"usage"`
		Limits quota.Limits `json:"limits"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, errors.CodeQuotaExceeded, body.Error)
	assert.Equal(t, 1500, body.Usage.Daily)
	assert.Equal(t, 1500, body.Limits.Daily)
}

func TestChatHandler_Validation(t *testing.T) {
	r := newRouter(t, quota.NewGate(nil), predictor{})

	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/chat", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/chat", `{"message":"   "}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(r, "/api/v1/chat", `{"message":"hi","history":[{"role":"system","content":"x"}]}`).Code)
}

func TestChatHandler_UpstreamFailure(t *testing.T) {
	r := newRouter(t, quota.NewGate(nil), predictor{err: &flowise.StatusError{StatusCode: 500}})

	w := post(r, "/api/v1/chat", `{"message":"hello"}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestImageHandler(t *testing.T) {
	gate := quota.NewGate(quota.NewMemoryStore())
	r := newRouter(t, gate, predictor{})

	for range 2 {
		w := post(r, "/api/v1/images", `{"prompt":"narikala fortress"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := post(r, "/api/v1/images", `{"prompt":"narikala fortress"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestImageHandler_Disabled(t *testing.T) {
	r := newRouter(t, quota.NewGate(nil), predictor{err: flowise.ErrImagesDisabled})

	w := post(r, "/api/v1/images", `{"prompt":"anything"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

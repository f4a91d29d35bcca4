package bog

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/config"
)

type gateway struct {
	mu          sync.Mutex
	server      *httptest.Server
	tokenCalls  int32
	lastOrder   OrderRequest
	orderStatus string
}

func newGateway(t *testing.T) *gateway {
	t.Helper()

	g := &gateway{orderStatus: StatusCompleted}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&g.tokenCalls, 1)

		id, secret, ok := r.BasicAuth()
		if !ok || id != "client" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: "tok", ExpiresIn: 300}) //nolint:errcheck
	})
	mux.HandleFunc("/payments/v1/ecommerce/orders", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		g.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&g.lastOrder) //nolint:errcheck
		g.mu.Unlock()

		_, _ = w.Write([]byte(`{"id":"bog-1","_links":{"redirect":{"href":"https://payment.bog.ge/?order_id=bog-1"}}}`)) //nolint:errcheck
	})
	mux.HandleFunc("/payments/v1/receipt/bog-1", func(w http.ResponseWriter, _ *http.Request) {
		g.mu.Lock()
		status := g.orderStatus
		g.mu.Unlock()

		_ = json.NewEncoder(w).Encode(Receipt{ //nolint:errcheck
			OrderID:         "bog-1",
			ExternalOrderID: "ext-1",
			OrderStatus:     OrderStatus{Key: status},
		})
	})

	g.server = httptest.NewServer(mux)
	t.Cleanup(g.server.Close)

	return g
}

func (g *gateway) config() config.BOGConfig {
	return config.BOGConfig{
		APIURL:       g.server.URL + "/payments/v1",
		TokenURL:     g.server.URL + "/token",
		ClientID:     "client",
		ClientSecret: "secret",
		PremiumPrice: 19.99,
		Currency:     "GEL",
	}
}

func TestNewClient_NotConfigured(t *testing.T) {
	_, err := NewClient(config.BOGConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreateOrder(t *testing.T) {
	g := newGateway(t)

	c, err := NewClient(g.config())
	require.NoError(t, err)

	order, err := c.CreateOrder(context.Background(), OrderRequest{
		CallbackURL:     "https://kartuli.ai/api/v1/payments/callback",
		ExternalOrderID: "ext-1",
		PurchaseUnits: PurchaseUnits{
			Currency:    "GEL",
			TotalAmount: 19.99,
			Basket:      []BasketItem{{ProductID: "premium", Quantity: 1, UnitPrice: 19.99}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "bog-1", order.ID)
	assert.Equal(t, "https://payment.bog.ge/?order_id=bog-1", order.RedirectURL())
	g.mu.Lock()
	defer g.mu.Unlock()
	assert.Equal(t, "ext-1", g.lastOrder.ExternalOrderID)
}

func TestAccessToken_Cached(t *testing.T) {
	g := newGateway(t)

	c, err := NewClient(g.config())
	require.NoError(t, err)

	for range 3 {
		_, err := c.GetReceipt(context.Background(), "bog-1")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&g.tokenCalls))
}

func TestAccessToken_BadCredentialsNotRetried(t *testing.T) {
	g := newGateway(t)

	cfg := g.config()
	cfg.ClientSecret = "wrong"

	c, err := NewClient(cfg)
	require.NoError(t, err)

	_, err = c.GetReceipt(context.Background(), "bog-1")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&g.tokenCalls))
}

func TestGetReceipt(t *testing.T) {
	g := newGateway(t)

	c, err := NewClient(g.config())
	require.NoError(t, err)

	receipt, err := c.GetReceipt(context.Background(), "bog-1")
	require.NoError(t, err)
	assert.True(t, receipt.Completed())

	g.mu.Lock()
	g.orderStatus = StatusRejected
	g.mu.Unlock()

	receipt, err = c.GetReceipt(context.Background(), "bog-1")
	require.NoError(t, err)
	assert.False(t, receipt.Completed())
}

func TestReceiptMatches(t *testing.T) {
	receipt := func(externalID, currency, amount string) *Receipt {
		r := &Receipt{ExternalOrderID: externalID}
		r.PurchaseUnits.Currency = currency
		r.PurchaseUnits.RequestAmount = amount
		return r
	}

	tests := []struct {
		name    string
		receipt *Receipt
		want    bool
	}{
		{"exact", receipt("order-1", "GEL", "19.99"), true},
		{"currency case", receipt("order-1", "gel", "19.990"), true},
		{"other order", receipt("someone-else", "GEL", "19.99"), false},
		{"no external id", receipt("", "GEL", "19.99"), false},
		{"other currency", receipt("order-1", "USD", "19.99"), false},
		{"other amount", receipt("order-1", "GEL", "1.00"), false},
		{"missing amount", receipt("order-1", "GEL", ""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.receipt.Matches("order-1", 19.99, "GEL"))
		})
	}
}

func generateKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)

	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func sign(t *testing.T, key *rsa.PrivateKey, body []byte) string {
	t.Helper()

	digest := sha256.Sum256(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, digest[:])
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(sig)
}

func TestVerifyCallback(t *testing.T) {
	key, pub := generateKey(t)

	cfg := config.BOGConfig{ClientID: "client", ClientSecret: "secret", PublicKey: strings.ReplaceAll(pub, "\n", `\n`)}
	c, err := NewClient(cfg)
	require.NoError(t, err)

	body := []byte(`{"event":"order_payment","body":{"order_id":"bog-1"}}`)

	assert.NoError(t, c.VerifyCallback(body, sign(t, key, body)))
	assert.ErrorIs(t, c.VerifyCallback([]byte(`{"tampered":true}`), sign(t, key, body)), ErrInvalidSignature)
	assert.ErrorIs(t, c.VerifyCallback(body, "not base64!"), ErrInvalidSignature)
	assert.ErrorIs(t, c.VerifyCallback(body, ""), ErrInvalidSignature)
}

func TestVerifyCallback_NoKeyConfigured(t *testing.T) {
	c, err := NewClient(config.BOGConfig{ClientID: "client", ClientSecret: "secret"})
	require.NoError(t, err)

	assert.NoError(t, c.VerifyCallback([]byte("{}"), ""))
}

func TestParsePublicKey_Invalid(t *testing.T) {
	_, err := ParsePublicKey("not a key")
	assert.Error(t, err)
}

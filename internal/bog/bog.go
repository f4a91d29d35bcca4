package bog

import (
	"bytes"
	"context"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"codeberg.org/kartuli/server/internal/config"
)

// tokens are refreshed this long before the gateway expires them
const tokenLeeway = 30 * time.Second

// talks to the Bank of Georgia payments API
type Client struct {
	cfg        config.BOGConfig
	httpClient *http.Client
	publicKey  *rsa.PublicKey
	now        func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg config.BOGConfig) (*Client, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}

	c := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		now:        time.Now,
	}

	if cfg.PublicKey != "" {
		key, err := ParsePublicKey(cfg.PublicKey)
		if err != nil {
			return nil, err
		}

		c.publicKey = key
	}

	return c, nil
}

// parses a PEM encoded RSA public key; literal "\n" sequences from env files are accepted
func ParsePublicKey(data string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(strings.ReplaceAll(data, `\n`, "\n")))
	if block == nil {
		return nil, fmt.Errorf("invalid public key: no PEM block")
	}

	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid public key: %w", err)
	}

	key, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("invalid public key: not RSA")
	}

	return key, nil
}

// checks the SHA256withRSA callback signature; skipped when no key is configured
func (c *Client) VerifyCallback(body []byte, signature string) error {
	if c.publicKey == nil {
		return nil
	}

	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil || len(sig) == 0 {
		return ErrInvalidSignature
	}

	digest := sha256.Sum256(body)
	if err := rsa.VerifyPKCS1v15(c.publicKey, crypto.SHA256, digest[:], sig); err != nil {
		return ErrInvalidSignature
	}

	return nil
}

// returns a cached access token, fetching a new one when it is close to expiry
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	resp, err := backoff.Retry(ctx, func() (*tokenResponse, error) {
		return c.fetchToken(ctx)
	}, backoff.WithMaxTries(3))
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}

	c.token = resp.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(resp.ExpiresIn)*time.Second - tokenLeeway)

	return c.token, nil
}

func (c *Client) fetchToken(ctx context.Context) (*tokenResponse, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}

	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var token tokenResponse
	if err := c.send(req, &token); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	if token.AccessToken == "" {
		return nil, backoff.Permanent(fmt.Errorf("empty access token"))
	}

	return &token, nil
}

// registers an order and returns the gateway's id and redirect link
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*Order, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	req, err := c.authorized(ctx, http.MethodPost, c.cfg.APIURL+"/ecommerce/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "ka")
	req.Header.Set("Idempotency-Key", uuid.NewString())

	var created Order
	if err := c.send(req, &created); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return &created, nil
}

// fetches the payment details of an order
func (c *Client) GetReceipt(ctx context.Context, orderID string) (*Receipt, error) {
	req, err := c.authorized(ctx, http.MethodGet, c.cfg.APIURL+"/receipt/"+url.PathEscape(orderID), nil)
	if err != nil {
		return nil, err
	}

	var receipt Receipt
	if err := c.send(req, &receipt); err != nil {
		return nil, fmt.Errorf("failed to fetch receipt: %w", err)
	}

	return &receipt, nil
}

func (c *Client) authorized(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048)) //nolint:errcheck
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/kartuli/server/internal/config"
)

const testSecret = "test-secret-key-for-testing"

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGenerateJWT_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", "test@example.com", false)

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, 3, len(strings.Split(token, ".")), "JWT should have 3 parts")
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateJWT("user-123", "test@example.com", false)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET not set")
}

func TestValidateJWT_ValidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", "test@example.com", true)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
}

func TestValidateJWT_ExpiredToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	claims := Claims{
		UserID: "user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateJWT(tokenString)
	assert.Error(t, err, "expired token should be rejected")
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	token, err := GenerateJWT("user-123", "test@example.com", false)
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "different-secret-key")

	_, err = ValidateJWT(token)
	assert.Error(t, err, "token signed with different secret should be rejected")
}

func TestValidateJWT_NoneAlgorithm(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	claims := Claims{
		UserID:  "attacker",
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, _ := token.SignedString(jwt.UnsafeAllowNoneSignatureType) //nolint:errcheck // test code

	_, err := ValidateJWT(tokenString)
	assert.Error(t, err, "token with 'none' algorithm should be rejected")
}

func TestValidateJWT_MalformedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	for _, token := range []string{"", "not.a.jwt", "only.two", "<script>alert('xss')</script>"} {
		_, err := ValidateJWT(token)
		assert.Error(t, err, "malformed token '%s' should be rejected", token)
	}
}

func TestJWT_TokenExpiration(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-123", "test@example.com", false)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)

	diff := claims.ExpiresAt.Sub(time.Now().Add(TokenTTL)).Abs()
	assert.Less(t, diff, 5*time.Second)
}

func TestInitializeProviders(t *testing.T) {
	_, err := InitializeProviders(&config.Config{})
	assert.Error(t, err, "session secret is required")

	names, err := InitializeProviders(&config.Config{
		SessionSecret: "s",
		BaseURL:       "https://kartuli.ai",
		OAuth:         config.OAuthConfig{GoogleClientID: "id", GoogleClientSecret: "secret"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"google"}, names)
}

func serve(t *testing.T, header string, handlers ...gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "admin": IsAdmin(c)})
	})...)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	token, err := GenerateJWT("user-1", "a@b.ge", false)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, serve(t, "", AuthMiddleware()).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, "Token abc", AuthMiddleware()).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(t, "Bearer garbage", AuthMiddleware()).Code)

	w := serve(t, "Bearer "+token, AuthMiddleware())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	w := serve(t, "Bearer garbage", OptionalAuthMiddleware())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":""`)
}

func TestAdminMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	user, err := GenerateJWT("user-1", "a@b.ge", false)
	require.NoError(t, err)

	admin, err := GenerateJWT("admin-1", "admin@b.ge", true)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, serve(t, "Bearer "+user, AuthMiddleware(), AdminMiddleware()).Code)
	assert.Equal(t, http.StatusOK, serve(t, "Bearer "+admin, AuthMiddleware(), AdminMiddleware()).Code)
}

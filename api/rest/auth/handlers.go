package auth

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"codeberg.org/kartuli/server/internal/auth"
	"codeberg.org/kartuli/server/internal/errors"
	"codeberg.org/kartuli/server/internal/logger"
	"codeberg.org/kartuli/server/kartuli/users"
)

func issueToken(c *gin.Context, user *users.User, status int) {
	token, err := auth.GenerateJWT(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		errors.InternalError(c, "failed to generate token", err)
		return
	}

	c.JSON(status, AuthResponse{User: user, Token: token})
}

// RegisterHandler godoc
// @Summary Register with email and password
// @Description Creates a FREE account and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Credentials"
// @Success 201 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /api/v1/auth/register [post]
func RegisterHandler(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userRepo.CreateWithPassword(c.Request.Context(), req.Email, req.Name, req.Password)

		switch {
		case stderrors.Is(err, users.ErrEmailTaken):
			errors.Conflict(c, "email already registered")
			return
		case stderrors.Is(err, users.ErrWeakPassword):
			errors.BadRequest(c, err.Error(), nil)
			return
		case err != nil:
			errors.InternalError(c, "failed to create user", err)
			return
		}

		issueToken(c, user, http.StatusCreated)
	}
}

// LoginHandler godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/auth/login [post]
func LoginHandler(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		user, err := userRepo.Authenticate(c.Request.Context(), req.Email, req.Password)
		if stderrors.Is(err, users.ErrInvalidCredentials) {
			errors.Unauthorized(c, "invalid email or password")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to sign in", err)
			return
		}

		issueToken(c, user, http.StatusOK)
	}
}

// BeginAuthHandler godoc
// @Summary Start OAuth authentication
// @Description Begin OAuth authentication flow with a configured provider
// @Tags auth
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 302 {string} string "Redirect to OAuth provider"
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider} [get]
func BeginAuthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if _, err := goth.GetProvider(provider); err != nil {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		// gothic reads the provider from the query string
		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothic.BeginAuthHandler(c.Writer, c.Request)
	}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description OAuth provider callback. Returns user data and JWT token
// @Tags auth
// @Produce json
// @Param provider path string true "OAuth provider" Enums(google, github)
// @Success 200 {object} AuthResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/v1/auth/{provider}/callback [get]
func CallbackHandler(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider := c.Param("provider")

		if _, err := goth.GetProvider(provider); err != nil {
			errors.BadRequest(c, "invalid provider", nil)
			return
		}

		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			errors.BadRequest(c, "authentication failed", err)
			return
		}

		if gothUser.Email == "" {
			errors.BadRequest(c, "provider did not share an email address", nil)
			return
		}

		user, err := userRepo.FindOrCreateByProvider(
			c.Request.Context(),
			gothUser.Provider,
			gothUser.UserID,
			gothUser.Email,
			gothUser.Name,
			gothUser.AvatarURL,
		)
		if err != nil {
			errors.InternalError(c, "failed to create user", err)
			return
		}

		issueToken(c, user, http.StatusOK)
	}
}

// GetCurrentUserHandler godoc
// @Summary Get current user
// @Description Get authenticated user's profile including plan
// @Tags auth
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/auth/me [get]
// @Security BearerAuth
func GetCurrentUserHandler(userRepo UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := auth.GetUserID(c)
		if !exists {
			errors.Unauthorized(c, "")
			return
		}

		user, err := userRepo.FindByID(c.Request.Context(), userID)
		if stderrors.Is(err, users.ErrNotFound) {
			errors.NotFound(c, "user")
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to load user", err)
			return
		}

		c.JSON(http.StatusOK, UserResponse{User: user})
	}
}

// LogoutHandler godoc
// @Summary Logout
// @Description Clear the OAuth session; bearer tokens are dropped client-side
// @Tags auth
// @Produce json
// @Success 200 {object} MessageResponse
// @Router /api/v1/auth/logout [post]
func LogoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := gothic.Logout(c.Writer, c.Request); err != nil {
			logger.ErrorErr(err, "failed to logout user from gothic session")
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
	}
}

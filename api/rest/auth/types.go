package auth

import (
	"context"

	"codeberg.org/kartuli/server/kartuli/users"
)

// user operations the auth handlers need
type UserStore interface {
	FindOrCreateByProvider(ctx context.Context, provider, providerID, email, name, avatarURL string) (*users.User, error)
	CreateWithPassword(ctx context.Context, email, name, password string) (*users.User, error)
	Authenticate(ctx context.Context, email, password string) (*users.User, error)
	FindByID(ctx context.Context, userID string) (*users.User, error)
}

// AuthResponse returned after sign-in or registration
type AuthResponse struct {
	User  *users.User `json:"user"`
	Token string      `json:"token"`
}

// UserResponse wraps user data
type UserResponse struct {
	User *users.User `json:"user"`
}

// MessageResponse for simple success messages
type MessageResponse struct {
	Message string `json:"message"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=254"`
	Name     string `json:"name" binding:"max=100"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

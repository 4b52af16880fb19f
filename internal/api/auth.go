package api

import (
	"context"
	"fmt"
	"net/http"
)

// LoginRequest is the credential body for /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body for /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the envelope login and register wrap the user in.
type authResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// Login exchanges credentials for a session cookie and returns the
// authenticated user. The cookie lands in the client's jar; callers only see
// the identity.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp authResponse
	err := c.send(ctx, http.MethodPost, "/auth/login", LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return resp.User, nil
}

// Register creates an account. The server does not establish a session on
// registration; follow with Login.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp authResponse
	err := c.send(ctx, http.MethodPost, "/auth/register", RegisterRequest{Username: username, Email: email, Password: password}, &resp)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}
	return resp.User, nil
}

// Me returns the identity behind the current session cookie. A missing or
// expired session surfaces as KindUnauthorized.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/auth/me", &user); err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return &user, nil
}

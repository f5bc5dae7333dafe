// ABOUTME: Auth endpoints of the remote API.
// ABOUTME: Register creates an account; Login exchanges credentials for a bearer token.

package api

import (
	"context"
	"net/http"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the login reply. Token may be empty on a malformed reply;
// callers must check it.
type AuthResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. The response body is ignored.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, "register", http.MethodPost, "/auth/register", reg, nil)
}

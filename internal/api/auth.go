package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"dms-go/internal/model"
)

// Login exchanges credentials for a bearer token. The token is returned, not stored.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	if err := c.call(ctx, http.MethodPost, "/auth/login", model.Credentials{Username: username, Password: password}, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return out.Token, nil
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, username, password string) error {
	return c.call(ctx, http.MethodPost, "/auth/signup", model.Credentials{Username: username, Password: password}, nil)
}

// UsernameTaken reports whether an account with this username already exists.
func (c *Client) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	path := "/auth/check-username/" + url.PathEscape(username)
	if err := c.call(ctx, http.MethodGet, path, nil, &taken); err != nil {
		return false, err
	}
	return taken, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if err := c.call(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &u, nil
}

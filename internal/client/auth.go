package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

// Login exchanges credentials for a bearer token. The backend expects the
// OAuth2 password form, with the email sent as username.
func (c *Client) Login(ctx context.Context, email, password string) (*transfer.LoginResponse, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	var resp transfer.LoginResponse
	if err := c.doForm(ctx, "", http.MethodPost, "/auth/login", form, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response did not include an access token")
	}
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, req transfer.RegisterRequest) (*transfer.UserInfo, error) {
	var user transfer.UserInfo
	if err := c.doJSON(ctx, "", http.MethodPost, "/users/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Me(ctx context.Context, token string) (*transfer.UserInfo, error) {
	var user transfer.UserInfo
	if err := c.doJSON(ctx, token, http.MethodGet, "/users/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

package client

import (
	"context"
	"net/http"

	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

func (c *Client) GetAPIKey(ctx context.Context, token string) (*transfer.APIKeyResponse, error) {
	var resp transfer.APIKeyResponse
	if err := c.doJSON(ctx, token, http.MethodGet, "/users/me/api-key", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.APIKey != "" {
		resp.HasKey = true
	}
	return &resp, nil
}

func (c *Client) PutAPIKey(ctx context.Context, token string, req transfer.APIKeyRequest) error {
	return c.doJSON(ctx, token, http.MethodPut, "/users/me/api-key", nil, req, nil)
}

func (c *Client) DeleteAPIKey(ctx context.Context, token string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/users/me/api-key", nil, nil, nil)
}

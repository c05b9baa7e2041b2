package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

// MetaAccounts lists connected Facebook pages or Instagram business accounts.
func (c *Client) MetaAccounts(ctx context.Context, token string, platform models.Platform) ([]transfer.MetaAccountRow, error) {
	if platform != models.PlatformFacebook && platform != models.PlatformInstagram {
		return nil, fmt.Errorf("%s is not a meta platform", platform)
	}
	var rows []transfer.MetaAccountRow
	if err := c.doJSON(ctx, token, http.MethodGet, "/facebook/accounts/"+string(platform), nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) YouTubeAccounts(ctx context.Context, token string) ([]transfer.YouTubeAccountRow, error) {
	var rows []transfer.YouTubeAccountRow
	if err := c.doJSON(ctx, token, http.MethodGet, "/youtube/accounts", nil, nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) DeleteMetaAccount(ctx context.Context, token, socialAccountID string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/facebook/"+url.PathEscape(socialAccountID), nil, nil, nil)
}

// AuthorizationURL asks the backend to start an OAuth authorization for
// platform and returns the URL the user has to visit.
func (c *Client) AuthorizationURL(ctx context.Context, token string, platform models.Platform) (string, error) {
	var resp transfer.AuthURLResponse
	var err error
	switch platform {
	case models.PlatformFacebook, models.PlatformInstagram:
		err = c.doJSON(ctx, token, http.MethodGet, "/facebook/auth/facebook/init", nil, nil, &resp)
	case models.PlatformYouTube:
		err = c.doJSON(ctx, token, http.MethodPost, "/youtube/connect", nil, struct{}{}, &resp)
	default:
		return "", fmt.Errorf("unsupported platform %q", platform)
	}
	if err != nil {
		return "", err
	}
	if resp.Location() == "" {
		return "", errors.New("backend did not return an authorization url")
	}
	return resp.Location(), nil
}

package service

import (
	"context"

	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

// The backend is split by concern so each service only sees the calls it
// makes. *client.Client satisfies all of them.

type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*transfer.LoginResponse, error)
	Register(ctx context.Context, req transfer.RegisterRequest) (*transfer.UserInfo, error)
	Me(ctx context.Context, token string) (*transfer.UserInfo, error)
}

type AccountsBackend interface {
	MetaAccounts(ctx context.Context, token string, platform models.Platform) ([]transfer.MetaAccountRow, error)
	YouTubeAccounts(ctx context.Context, token string) ([]transfer.YouTubeAccountRow, error)
	DeleteMetaAccount(ctx context.Context, token, socialAccountID string) error
	AuthorizationURL(ctx context.Context, token string, platform models.Platform) (string, error)
}

type PostsBackend interface {
	GeneratePreview(ctx context.Context, token string, req transfer.PreviewRequest) (*transfer.PreviewResponse, error)
	SchedulePost(ctx context.Context, token string, sub models.Submission, open client.MediaOpener) (*transfer.ScheduleResponse, error)
	PlatformPosts(ctx context.Context, token string, kind models.PostListKind, page, limit int) (*transfer.PlatformPostsPage, error)
	UpdatePlatformPost(ctx context.Context, token, postID string, upd models.PostUpdate, open client.MediaOpener) error
	DeletePlatformPost(ctx context.Context, token, postID string) error
}

type KeysBackend interface {
	GetAPIKey(ctx context.Context, token string) (*transfer.APIKeyResponse, error)
	PutAPIKey(ctx context.Context, token string, req transfer.APIKeyRequest) error
	DeleteAPIKey(ctx context.Context, token string) error
}

// Backend is the whole backend contract.
type Backend interface {
	AuthBackend
	AccountsBackend
	PostsBackend
	KeysBackend
}

var (
	_ Backend         = (*client.Client)(nil)
	_ AuthBackend     = (*client.Client)(nil)
	_ AccountsBackend = (*client.Client)(nil)
	_ PostsBackend    = (*client.Client)(nil)
	_ KeysBackend     = (*client.Client)(nil)
)

package models

import (
	"encoding/json"
	"time"
)

type PostStatus string

const (
	PostStatusReady      PostStatus = "ready"
	PostStatusScheduled  PostStatus = "scheduled"
	PostStatusProcessing PostStatus = "processing"
	PostStatusPublished  PostStatus = "published"
	PostStatusFailed     PostStatus = "failed"
)

type PostListKind string

const (
	PostListPublished   PostListKind = "published"
	PostListUnpublished PostListKind = "unpublished"
)

func (k PostListKind) Valid() bool {
	return k == PostListPublished || k == PostListUnpublished
}

type MediaAsset struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	MediaType string `json:"media_type"`
	FileName  string `json:"file_name,omitempty"`
}

// BackendPost is a read-only projection of a platform post held by the backend.
type BackendPost struct {
	ID               string          `json:"id"`
	SocialAccountID  string          `json:"social_account_id"`
	Platform         Platform        `json:"platform"`
	Status           PostStatus      `json:"status"`
	ScheduledAt      time.Time       `json:"scheduled_at"`
	GeneratedContent json.RawMessage `json:"generated_content,omitempty"`
	PostURL          string          `json:"post_url,omitempty"`
	MediaAssets      []MediaAsset    `json:"media_assets"`
}

// Overdue reports a post still waiting to go out after its scheduled time.
func (p BackendPost) Overdue(now time.Time) bool {
	if p.Status != PostStatusReady && p.Status != PostStatusScheduled {
		return false
	}
	return !p.ScheduledAt.IsZero() && p.ScheduledAt.Before(now)
}

type PostView struct {
	BackendPost
	AccountName string `json:"account_name"`
	Overdue     bool   `json:"overdue"`
}

type PostPage struct {
	Kind  PostListKind `json:"kind"`
	Posts []PostView   `json:"posts"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Error string       `json:"error,omitempty"`
}

type History struct {
	Published   PostPage `json:"published"`
	Unpublished PostPage `json:"unpublished"`
}

// PostUpdate carries the editable fields of an existing platform post.
type PostUpdate struct {
	GeneratedContent json.RawMessage
	ScheduledAt      time.Time
	Media            []MediaItem
}

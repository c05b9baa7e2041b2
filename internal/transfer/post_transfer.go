package transfer

import (
	"bytes"
	"encoding/json"
)

type MediaAssetRow struct {
	ID        FlexibleID `json:"id"`
	URL       string     `json:"url"`
	FileURL   string     `json:"file_url"`
	MediaType string     `json:"media_type"`
	FileName  string     `json:"file_name"`
}

type PlatformPostRow struct {
	ID               FlexibleID      `json:"id"`
	SocialAccountID  FlexibleID      `json:"social_account_id"`
	Platform         string          `json:"platform"`
	Status           string          `json:"status"`
	ScheduledAt      FlexibleTime    `json:"scheduled_at"`
	GeneratedContent json.RawMessage `json:"generated_content"`
	PostURL          string          `json:"post_url"`
	MediaAssets      []MediaAssetRow `json:"media_assets"`
}

// PlatformPostsPage decodes either a paginated envelope or a bare array.
type PlatformPostsPage struct {
	Data  []PlatformPostRow `json:"data"`
	Total int               `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

func (p *PlatformPostsPage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var rows []PlatformPostRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return err
		}
		*p = PlatformPostsPage{Data: rows, Total: len(rows)}
		return nil
	}
	type envelope PlatformPostsPage
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	*p = PlatformPostsPage(env)
	return nil
}

type ScheduleResponse struct {
	Message string          `json:"message"`
	Posts   json.RawMessage `json:"posts,omitempty"`
}

package transfer

type MetaAccountRow struct {
	ID             FlexibleID   `json:"id"`
	Name           string       `json:"name"`
	Username       string       `json:"username"`
	PageID         FlexibleID   `json:"page_id"`
	InstagramID    FlexibleID   `json:"instagram_id"`
	ProfilePicture string       `json:"profile_picture"`
	FollowersCount int64        `json:"followers_count"`
	IsActive       *bool        `json:"is_active"`
	CreatedAt      FlexibleTime `json:"created_at"`
}

type YouTubeAccountRow struct {
	AccountID       FlexibleID   `json:"account_id"`
	ChannelID       string       `json:"channel_id"`
	ChannelTitle    string       `json:"channel_title"`
	ThumbnailURL    string       `json:"thumbnail_url"`
	SubscriberCount int64        `json:"subscriber_count"`
	IsActive        *bool        `json:"is_active"`
	CreatedAt       FlexibleTime `json:"created_at"`
}

type AuthURLResponse struct {
	AuthURL          string `json:"auth_url"`
	AuthorizationURL string `json:"authorization_url"`
	URL              string `json:"url"`
}

// Location returns whichever URL field the backend populated.
func (r AuthURLResponse) Location() string {
	switch {
	case r.AuthURL != "":
		return r.AuthURL
	case r.AuthorizationURL != "":
		return r.AuthorizationURL
	default:
		return r.URL
	}
}

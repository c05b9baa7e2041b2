package models

import (
	"strings"
	"time"

	"google.golang.org/api/youtube/v3"
)

type ContentKind string

const (
	ContentShortVideo ContentKind = "short_video"
	ContentLongVideo  ContentKind = "long_video"
	ContentYouTube    ContentKind = "youtube"
)

var ContentKinds = []ContentKind{ContentShortVideo, ContentLongVideo, ContentYouTube}

func (k ContentKind) Valid() bool {
	return k == ContentShortVideo || k == ContentLongVideo || k == ContentYouTube
}

type CaptionBox struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags,omitempty"`
}

func (b CaptionBox) HasText() bool {
	return strings.TrimSpace(b.Caption) != ""
}

// ContentBoxes holds the three fixed content slots. They are always present
// regardless of which accounts are targeted.
type ContentBoxes struct {
	ShortVideo CaptionBox            `json:"short_video"`
	LongVideo  CaptionBox            `json:"long_video"`
	YouTube    *youtube.VideoSnippet `json:"youtube"`
}

func NewContentBoxes() ContentBoxes {
	return ContentBoxes{YouTube: &youtube.VideoSnippet{}}
}

func (b ContentBoxes) HasText() bool {
	if b.ShortVideo.HasText() || b.LongVideo.HasText() {
		return true
	}
	if b.YouTube == nil {
		return false
	}
	return strings.TrimSpace(b.YouTube.Title) != "" || strings.TrimSpace(b.YouTube.Description) != ""
}

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// MediaItem is an attachment staged for upload. Key addresses the staging store.
type MediaItem struct {
	ID       string    `json:"id"`
	FileName string    `json:"file_name"`
	MIME     string    `json:"mime"`
	Type     MediaType `json:"type"`
	Size     int64     `json:"size"`
	Key      string    `json:"-"`
}

func HasVideo(media []MediaItem) bool {
	for _, m := range media {
		if m.Type == MediaTypeVideo {
			return true
		}
	}
	return false
}

type PostType struct {
	ID            string      `json:"id"`
	Label         string      `json:"label"`
	Platform      Platform    `json:"platform"`
	Box           ContentKind `json:"box"`
	RequiresVideo bool        `json:"requires_video"`
}

var postTypes = []PostType{
	{ID: "facebook", Label: "Page Post", Platform: PlatformFacebook, Box: ContentLongVideo},
	{ID: "reel", Label: "Facebook Reel", Platform: PlatformFacebook, Box: ContentShortVideo, RequiresVideo: true},
	{ID: "carousel", Label: "Carousel", Platform: PlatformInstagram, Box: ContentLongVideo},
	{ID: "instagram_reel", Label: "Instagram Reel", Platform: PlatformInstagram, Box: ContentShortVideo, RequiresVideo: true},
	{ID: "youtube", Label: "YouTube Video", Platform: PlatformYouTube, Box: ContentYouTube, RequiresVideo: true},
}

func PostTypesFor(platform Platform) []PostType {
	var out []PostType
	for _, pt := range postTypes {
		if pt.Platform == platform {
			out = append(out, pt)
		}
	}
	return out
}

func LookupPostType(platform Platform, id string) (PostType, bool) {
	for _, pt := range postTypes {
		if pt.Platform == platform && pt.ID == id {
			return pt, true
		}
	}
	return PostType{}, false
}

// Draft is the composer's unsaved post. It only lives in memory until it is
// submitted or reset.
type Draft struct {
	Prompt            string              `json:"prompt"`
	Boxes             ContentBoxes        `json:"content_boxes"`
	Media             []MediaItem         `json:"media"`
	SelectedAccounts  []string            `json:"selected_accounts"`
	PlatformPostTypes map[string][]string `json:"platform_post_types"`
	CallToAction      map[string]string   `json:"call_to_action"`
	ScheduledTime     time.Time           `json:"scheduled_time"`
}

func NewDraft() Draft {
	return Draft{
		Boxes:             NewContentBoxes(),
		Media:             []MediaItem{},
		SelectedAccounts:  []string{},
		PlatformPostTypes: map[string][]string{},
		CallToAction:      map[string]string{},
	}
}

func (d *Draft) IsSelected(accountID string) bool {
	for _, id := range d.SelectedAccounts {
		if id == accountID {
			return true
		}
	}
	return false
}

func (d *Draft) HasPostType(accountID, postType string) bool {
	for _, t := range d.PlatformPostTypes[accountID] {
		if t == postType {
			return true
		}
	}
	return false
}

// PlatformEntry is one (account, post type) row of a submission.
type PlatformEntry struct {
	Platform        Platform `json:"platform"`
	SocialAccountID string   `json:"social_account_id"`
	Type            string   `json:"type,omitempty"`
	CallToAction    string   `json:"call_to_action"`
}

// Submission is a validated draft ready to be sent as one multipart request.
type Submission struct {
	Prompt        string
	ScheduledTime time.Time
	Boxes         ContentBoxes
	Media         []MediaItem
	Entries       []PlatformEntry
	Excluded      []string
}

package models

import (
	"fmt"
	"time"
)

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

func (p Platform) Valid() bool {
	switch p {
	case PlatformFacebook, PlatformInstagram, PlatformYouTube:
		return true
	}
	return false
}

// DisplayName is the human label used in fallbacks such as "Facebook Account".
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformInstagram:
		return "Instagram"
	case PlatformYouTube:
		return "YouTube"
	default:
		return string(p)
	}
}

// Family groups platforms that share one OAuth connection. Instagram
// business accounts are linked through the Facebook login.
func (p Platform) Family() []Platform {
	switch p {
	case PlatformFacebook, PlatformInstagram:
		return []Platform{PlatformFacebook, PlatformInstagram}
	default:
		return []Platform{p}
	}
}

type AccountKind string

const (
	AccountKindMeta    AccountKind = "meta"
	AccountKindYouTube AccountKind = "youtube"
)

// MetaAccount is a Facebook page or Instagram business account, keyed by the
// backend's id field.
type MetaAccount struct {
	ID          string `json:"id"`
	PageID      string `json:"page_id,omitempty"`
	InstagramID string `json:"instagram_id,omitempty"`
	Username    string `json:"username,omitempty"`
}

// YouTubeAccount is a connected channel, keyed by the backend's account_id field.
type YouTubeAccount struct {
	AccountID    string `json:"account_id"`
	ChannelID    string `json:"channel_id"`
	ChannelTitle string `json:"channel_title"`
}

type ProfileInfo struct {
	Username   string `json:"username,omitempty"`
	PictureURL string `json:"picture_url,omitempty"`
	Followers  int64  `json:"followers,omitempty"`
}

// PlatformAccount is a tagged union: exactly one of Meta or YouTube is set,
// matching Kind.
type PlatformAccount struct {
	ID           string          `json:"id"`
	Kind         AccountKind     `json:"kind"`
	Platform     Platform        `json:"platform"`
	PlatformName string          `json:"platform_name"`
	AccountName  string          `json:"account_name"`
	Connected    bool            `json:"connected"`
	ProfileInfo  ProfileInfo     `json:"profile_info"`
	CreatedAt    time.Time       `json:"created_at"`
	Meta         *MetaAccount    `json:"meta,omitempty"`
	YouTube      *YouTubeAccount `json:"youtube,omitempty"`
}

func NewMetaAccount(platform Platform, meta MetaAccount) PlatformAccount {
	return PlatformAccount{
		ID:           CompositeID(platform, meta.ID),
		Kind:         AccountKindMeta,
		Platform:     platform,
		PlatformName: platform.DisplayName(),
		Meta:         &meta,
	}
}

func NewYouTubeAccount(yt YouTubeAccount) PlatformAccount {
	return PlatformAccount{
		ID:           CompositeID(PlatformYouTube, yt.AccountID),
		Kind:         AccountKindYouTube,
		Platform:     PlatformYouTube,
		PlatformName: PlatformYouTube.DisplayName(),
		AccountName:  yt.ChannelTitle,
		YouTube:      &yt,
	}
}

// SocialAccountID returns the backend's opaque identifier for the account.
func (a PlatformAccount) SocialAccountID() string {
	switch a.Kind {
	case AccountKindMeta:
		if a.Meta != nil {
			return a.Meta.ID
		}
	case AccountKindYouTube:
		if a.YouTube != nil {
			return a.YouTube.AccountID
		}
	}
	return ""
}

func (a PlatformAccount) DisplayName() string {
	if a.AccountName != "" {
		return a.AccountName
	}
	if a.ProfileInfo.Username != "" {
		return a.ProfileInfo.Username
	}
	return a.Platform.DisplayName() + " Account"
}

func CompositeID(platform Platform, backendID string) string {
	return fmt.Sprintf("%s-%s", platform, backendID)
}

type AccountMapping struct {
	PlatformAccountID string   `json:"platform_account_id"`
	SocialAccountID   string   `json:"social_account_id"`
	Platform          Platform `json:"platform"`
}

// Directory is one consistent snapshot of the connected accounts. Accounts
// and Mapping are always derived together by NewDirectory.
type Directory struct {
	Accounts    []PlatformAccount         `json:"accounts"`
	Mapping     map[string]AccountMapping `json:"mapping"`
	RefreshedAt time.Time                 `json:"refreshed_at"`
}

func NewDirectory(refreshedAt time.Time, groups ...[]PlatformAccount) Directory {
	dir := Directory{
		Accounts:    []PlatformAccount{},
		Mapping:     map[string]AccountMapping{},
		RefreshedAt: refreshedAt,
	}
	index := map[string]int{}
	for _, group := range groups {
		for _, acc := range group {
			socialID := acc.SocialAccountID()
			if socialID == "" {
				continue
			}
			if i, ok := index[acc.ID]; ok {
				dir.Accounts[i] = acc
			} else {
				index[acc.ID] = len(dir.Accounts)
				dir.Accounts = append(dir.Accounts, acc)
			}
			dir.Mapping[acc.ID] = AccountMapping{
				PlatformAccountID: acc.ID,
				SocialAccountID:   socialID,
				Platform:          acc.Platform,
			}
		}
	}
	return dir
}

func (d Directory) Lookup(id string) (PlatformAccount, bool) {
	if _, ok := d.Mapping[id]; !ok {
		return PlatformAccount{}, false
	}
	for _, acc := range d.Accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return PlatformAccount{}, false
}

// AccountName resolves a backend account reference to a display name,
// falling back to "{Platform} Account".
func (d Directory) AccountName(socialAccountID string, platform Platform) string {
	for _, m := range d.Mapping {
		if m.SocialAccountID != socialAccountID {
			continue
		}
		if platform != "" && m.Platform != platform {
			continue
		}
		if acc, ok := d.Lookup(m.PlatformAccountID); ok {
			return acc.DisplayName()
		}
	}
	return platform.DisplayName() + " Account"
}

// SocialIDs lists the backend ids currently known for the given platforms.
func (d Directory) SocialIDs(platforms ...Platform) []string {
	want := map[Platform]bool{}
	for _, p := range platforms {
		want[p] = true
	}
	var ids []string
	for _, acc := range d.Accounts {
		if len(want) == 0 || want[acc.Platform] {
			ids = append(ids, acc.SocialAccountID())
		}
	}
	return ids
}

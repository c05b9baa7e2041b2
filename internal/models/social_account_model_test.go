package models

import (
	"testing"
	"time"
)

func TestSocialAccountIDUsesVariantKey(t *testing.T) {
	fb := NewMetaAccount(PlatformFacebook, MetaAccount{ID: "17", PageID: "page-1"})
	yt := NewYouTubeAccount(YouTubeAccount{AccountID: "acc-9", ChannelID: "UC123", ChannelTitle: "Chan"})

	if got := fb.SocialAccountID(); got != "17" {
		t.Fatalf("meta social id = %q", got)
	}
	if got := yt.SocialAccountID(); got != "acc-9" {
		t.Fatalf("youtube social id = %q", got)
	}
	if fb.ID != "facebook-17" || yt.ID != "youtube-acc-9" {
		t.Fatalf("composite ids = %q, %q", fb.ID, yt.ID)
	}
	if (PlatformAccount{Kind: AccountKindMeta}).SocialAccountID() != "" {
		t.Fatal("missing variant must yield empty id")
	}
}

func TestNewDirectoryBuildsMappingForEveryAccount(t *testing.T) {
	fb := NewMetaAccount(PlatformFacebook, MetaAccount{ID: "1"})
	fb.AccountName = "PageA"
	ig := NewMetaAccount(PlatformInstagram, MetaAccount{ID: "1", Username: "insta"})
	ig.AccountName = "InstaB"
	yt := NewYouTubeAccount(YouTubeAccount{AccountID: "y1", ChannelTitle: "Channel"})
	dup := fb
	dup.AccountName = "PageA renamed"
	broken := PlatformAccount{ID: "facebook-x", Kind: AccountKindMeta, Platform: PlatformFacebook}

	dir := NewDirectory(time.Unix(0, 0), []PlatformAccount{fb, broken}, []PlatformAccount{ig}, []PlatformAccount{yt, dup})

	if len(dir.Accounts) != 3 {
		t.Fatalf("accounts = %d, want 3", len(dir.Accounts))
	}
	if len(dir.Mapping) != len(dir.Accounts) {
		t.Fatalf("mapping = %d, accounts = %d", len(dir.Mapping), len(dir.Accounts))
	}
	for _, acc := range dir.Accounts {
		m, ok := dir.Mapping[acc.ID]
		if !ok {
			t.Fatalf("no mapping for %s", acc.ID)
		}
		if m.SocialAccountID != acc.SocialAccountID() || m.Platform != acc.Platform {
			t.Fatalf("mapping mismatch for %s: %+v", acc.ID, m)
		}
	}
	got, ok := dir.Lookup("facebook-1")
	if !ok || got.AccountName != "PageA renamed" {
		t.Fatalf("duplicate should replace earlier entry, got %+v", got)
	}
}

func TestDirectoryAccountNameFallback(t *testing.T) {
	fb := NewMetaAccount(PlatformFacebook, MetaAccount{ID: "5"})
	fb.AccountName = "PageA"
	ig := NewMetaAccount(PlatformInstagram, MetaAccount{ID: "5"})
	ig.AccountName = "InstaB"
	dir := NewDirectory(time.Now(), []PlatformAccount{fb, ig})

	tests := []struct {
		socialID string
		platform Platform
		want     string
	}{
		{"5", PlatformFacebook, "PageA"},
		{"5", PlatformInstagram, "InstaB"},
		{"6", PlatformInstagram, "Instagram Account"},
		{"5", PlatformYouTube, "YouTube Account"},
	}
	for _, tt := range tests {
		if got := dir.AccountName(tt.socialID, tt.platform); got != tt.want {
			t.Errorf("AccountName(%s, %s) = %q, want %q", tt.socialID, tt.platform, got, tt.want)
		}
	}
}

func TestPlatformFamily(t *testing.T) {
	if got := PlatformInstagram.Family(); len(got) != 2 {
		t.Fatalf("instagram family = %v", got)
	}
	if got := PlatformYouTube.Family(); len(got) != 1 || got[0] != PlatformYouTube {
		t.Fatalf("youtube family = %v", got)
	}
}

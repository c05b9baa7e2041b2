package service

import (
	"strings"
	"testing"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"google.golang.org/api/youtube/v3"
)

func TestCheckCompatibility(t *testing.T) {
	gif := models.MediaItem{FileName: "a.gif", MIME: "image/gif", Type: models.MediaTypeImage, Size: 1024}
	bigPNG := pngItem("big")
	bigPNG.Size = 9 * mb
	webm := models.MediaItem{FileName: "c.webm", MIME: "video/webm", Type: models.MediaTypeVideo, Size: mb}
	titled := models.ContentBoxes{YouTube: &youtube.VideoSnippet{Title: "Launch day"}}

	tests := []struct {
		name     string
		platform models.Platform
		media    []models.MediaItem
		boxes    models.ContentBoxes
		want     []string
	}{
		{"facebook text only", models.PlatformFacebook, nil, models.NewContentBoxes(), nil},
		{"facebook gif", models.PlatformFacebook, []models.MediaItem{gif}, models.NewContentBoxes(), nil},
		{"instagram gif", models.PlatformInstagram, []models.MediaItem{gif}, models.NewContentBoxes(), []string{"format must be JPEG, PNG"}},
		{"instagram image too big", models.PlatformInstagram, []models.MediaItem{bigPNG}, models.NewContentBoxes(), []string{"exceeds the 8MB limit"}},
		{"instagram without media", models.PlatformInstagram, nil, models.NewContentBoxes(), []string{"at least one image or video"}},
		{"youtube webm with title", models.PlatformYouTube, []models.MediaItem{webm}, titled, nil},
		{"youtube two videos", models.PlatformYouTube, []models.MediaItem{webm, mp4Item("v")}, titled, []string{"exactly one video, got 2"}},
		{"youtube no title", models.PlatformYouTube, []models.MediaItem{webm}, models.NewContentBoxes(), []string{"title is required"}},
		{"youtube angle brackets", models.PlatformYouTube, []models.MediaItem{webm},
			models.ContentBoxes{YouTube: &youtube.VideoSnippet{Title: "<b>hi</b>"}}, []string{"cannot contain < or >"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckCompatibility(tt.platform, tt.media, tt.boxes)
			if len(got) != len(tt.want) {
				t.Fatalf("reasons = %q, want %d", got, len(tt.want))
			}
			for i, want := range tt.want {
				if !strings.Contains(got[i], want) {
					t.Errorf("reason %d = %q, want it to mention %q", i, got[i], want)
				}
			}
		})
	}
}

func TestHumanSize(t *testing.T) {
	if got := humanSize(gb); got != "1GB" {
		t.Fatalf("humanSize(gb) = %q", got)
	}
	if got := humanSize(100 * mb); got != "100MB" {
		t.Fatalf("humanSize(100mb) = %q", got)
	}
}

package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/maheshrc27/postflow-studio/internal/models"
)

const (
	mb = int64(1) << 20
	gb = int64(1) << 30

	instagramMaxItems     = 10
	youtubeMaxTitle       = 100
	youtubeMaxDescription = 5000
)

type mediaLimit struct {
	mimes   map[string]string
	maxSize int64
}

type platformRules struct {
	image    *mediaLimit
	video    *mediaLimit
	maxItems int
}

var (
	jpegPNG = map[string]string{"image/jpeg": "JPEG", "image/png": "PNG"}
	mp4MOV  = map[string]string{"video/mp4": "MP4", "video/quicktime": "MOV"}
)

var compatRules = map[models.Platform]platformRules{
	models.PlatformInstagram: {
		image:    &mediaLimit{mimes: jpegPNG, maxSize: 8 * mb},
		video:    &mediaLimit{mimes: mp4MOV, maxSize: 100 * mb},
		maxItems: instagramMaxItems,
	},
	models.PlatformFacebook: {
		image: &mediaLimit{
			mimes:   map[string]string{"image/jpeg": "JPEG", "image/png": "PNG", "image/gif": "GIF", "image/webp": "WEBP"},
			maxSize: 10 * mb,
		},
		video: &mediaLimit{mimes: mp4MOV, maxSize: gb},
	},
}

var youtubeVideo = map[string]string{
	"video/mp4":       "MP4",
	"video/quicktime": "MOV",
	"video/webm":      "WEBM",
	"video/x-msvideo": "AVI",
}

// CheckCompatibility lists the reasons media and boxes cannot be published
// to platform. An empty result means the platform accepts them.
func CheckCompatibility(platform models.Platform, media []models.MediaItem, boxes models.ContentBoxes) []string {
	if platform == models.PlatformYouTube {
		return checkYouTube(media, boxes)
	}

	rules, ok := compatRules[platform]
	if !ok {
		return []string{fmt.Sprintf("%s is not supported", platform)}
	}

	var reasons []string
	if platform == models.PlatformInstagram && len(media) == 0 {
		reasons = append(reasons, "Instagram posts need at least one image or video")
	}
	if rules.maxItems > 0 && len(media) > rules.maxItems {
		reasons = append(reasons, fmt.Sprintf("at most %d media items are allowed, got %d", rules.maxItems, len(media)))
	}
	for _, item := range media {
		limit := rules.image
		if item.Type == models.MediaTypeVideo {
			limit = rules.video
		}
		if r := checkItem(item, limit); r != "" {
			reasons = append(reasons, r)
		}
	}
	return reasons
}

func checkItem(item models.MediaItem, limit *mediaLimit) string {
	if limit == nil {
		return fmt.Sprintf("%s: %s files are not accepted", item.FileName, item.Type)
	}
	if _, ok := limit.mimes[item.MIME]; !ok {
		return fmt.Sprintf("%s: format must be %s", item.FileName, formatList(limit.mimes))
	}
	if item.Size > limit.maxSize {
		return fmt.Sprintf("%s: exceeds the %s limit", item.FileName, humanSize(limit.maxSize))
	}
	return ""
}

func checkYouTube(media []models.MediaItem, boxes models.ContentBoxes) []string {
	var reasons []string

	videos := 0
	for _, item := range media {
		if item.Type != models.MediaTypeVideo {
			continue
		}
		videos++
		if _, ok := youtubeVideo[item.MIME]; !ok {
			reasons = append(reasons, fmt.Sprintf("%s: format must be %s", item.FileName, formatList(youtubeVideo)))
		}
	}
	if videos != 1 {
		reasons = append(reasons, fmt.Sprintf("YouTube needs exactly one video, got %d", videos))
	}

	var title, description string
	if boxes.YouTube != nil {
		title = strings.TrimSpace(boxes.YouTube.Title)
		description = boxes.YouTube.Description
	}
	switch {
	case title == "":
		reasons = append(reasons, "YouTube title is required")
	case utf8.RuneCountInString(title) > youtubeMaxTitle:
		reasons = append(reasons, fmt.Sprintf("YouTube title is longer than %d characters", youtubeMaxTitle))
	case strings.ContainsAny(title, "<>"):
		reasons = append(reasons, "YouTube title cannot contain < or >")
	}
	if len(description) > youtubeMaxDescription {
		reasons = append(reasons, fmt.Sprintf("YouTube description is longer than %d bytes", youtubeMaxDescription))
	}
	return reasons
}

func formatList(mimes map[string]string) string {
	order := []string{"JPEG", "PNG", "GIF", "WEBP", "MP4", "MOV", "WEBM", "AVI"}
	present := map[string]bool{}
	for _, name := range mimes {
		present[name] = true
	}
	var names []string
	for _, name := range order {
		if present[name] {
			names = append(names, name)
		}
	}
	return strings.Join(names, ", ")
}

func humanSize(n int64) string {
	if n >= gb && n%gb == 0 {
		return fmt.Sprintf("%dGB", n/gb)
	}
	return fmt.Sprintf("%dMB", n/mb)
}

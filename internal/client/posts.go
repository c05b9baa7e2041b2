package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

// MediaOpener returns the bytes of a staged media item.
type MediaOpener func(ctx context.Context, item models.MediaItem) (io.ReadCloser, error)

const mediaField = "media_files"

func (c *Client) GeneratePreview(ctx context.Context, token string, req transfer.PreviewRequest) (*transfer.PreviewResponse, error) {
	var resp transfer.PreviewResponse
	if err := c.doJSON(ctx, token, http.MethodPost, "/scheduled-videos/generate-preview", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SchedulePost sends the whole submission as one multipart request. The
// backend either accepts it or returns an error; partial outcomes are not
// reported back.
func (c *Client) SchedulePost(ctx context.Context, token string, sub models.Submission, open MediaOpener) (*transfer.ScheduleResponse, error) {
	boxes, err := json.Marshal(sub.Boxes)
	if err != nil {
		return nil, fmt.Errorf("encode content boxes: %w", err)
	}
	entries, err := json.Marshal(sub.Entries)
	if err != nil {
		return nil, fmt.Errorf("encode platform data: %w", err)
	}

	var resp transfer.ScheduleResponse
	err = c.doMultipart(ctx, token, http.MethodPost, "/scheduled-videos/schedule-post", func(mw *multipart.Writer) error {
		fields := []struct{ name, value string }{
			{"prompt", sub.Prompt},
			{"scheduled_time", sub.ScheduledTime.UTC().Format(time.RFC3339)},
			{"content_boxes", string(boxes)},
			{"platform_specific_data", string(entries)},
		}
		for _, f := range fields {
			if err := mw.WriteField(f.name, f.value); err != nil {
				return err
			}
		}
		return writeMedia(ctx, mw, sub.Media, open)
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PlatformPosts(ctx context.Context, token string, kind models.PostListKind, page, limit int) (*transfer.PlatformPostsPage, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown post list %q", kind)
	}
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp transfer.PlatformPostsPage
	if err := c.doJSON(ctx, token, http.MethodGet, "/scheduled-videos/platform-posts/"+string(kind), query, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Page == 0 {
		resp.Page = page
	}
	if resp.Limit == 0 {
		resp.Limit = limit
	}
	return &resp, nil
}

func (c *Client) UpdatePlatformPost(ctx context.Context, token, postID string, upd models.PostUpdate, open MediaOpener) error {
	return c.doMultipart(ctx, token, http.MethodPut, "/scheduled-videos/platform-posts/"+url.PathEscape(postID), func(mw *multipart.Writer) error {
		if len(upd.GeneratedContent) > 0 {
			if err := mw.WriteField("generated_content", string(upd.GeneratedContent)); err != nil {
				return err
			}
		}
		if !upd.ScheduledAt.IsZero() {
			if err := mw.WriteField("scheduled_at", upd.ScheduledAt.UTC().Format(time.RFC3339)); err != nil {
				return err
			}
		}
		return writeMedia(ctx, mw, upd.Media, open)
	}, nil)
}

func (c *Client) DeletePlatformPost(ctx context.Context, token, postID string) error {
	return c.doJSON(ctx, token, http.MethodDelete, "/scheduled-videos/platform-posts/"+url.PathEscape(postID), nil, nil, nil)
}

func writeMedia(ctx context.Context, mw *multipart.Writer, media []models.MediaItem, open MediaOpener) error {
	if len(media) > 0 && open == nil {
		return fmt.Errorf("no media opener for %d files", len(media))
	}
	for _, item := range media {
		if err := copyMedia(ctx, mw, item, open); err != nil {
			return err
		}
	}
	return nil
}

func copyMedia(ctx context.Context, mw *multipart.Writer, item models.MediaItem, open MediaOpener) error {
	rc, err := open(ctx, item)
	if err != nil {
		return fmt.Errorf("open media %s: %w", item.FileName, err)
	}
	defer rc.Close()

	part, err := createFilePart(mw, mediaField, item.FileName, item.MIME)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, rc); err != nil {
		return fmt.Errorf("stream media %s: %w", item.FileName, err)
	}
	return nil
}

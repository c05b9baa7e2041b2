package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type HistoryQuery struct {
	PublishedPage   int
	UnpublishedPage int
	Limit           int
}

type HistoryService interface {
	List(ctx context.Context, ws *Workspace, q HistoryQuery) models.History
	Page(ctx context.Context, ws *Workspace, kind models.PostListKind, page, limit int) (models.PostPage, error)
	Update(ctx context.Context, ws *Workspace, postID string, upd models.PostUpdate) error
	Delete(ctx context.Context, ws *Workspace, postID string) error
}

type historyService struct {
	backend PostsBackend
	media   MediaService
	clock   Clock
}

func NewHistoryService(backend PostsBackend, media MediaService, clock Clock) HistoryService {
	return &historyService{backend: backend, media: media, clock: clock}
}

// List loads both lists in parallel. A failure on one list is reported on
// that page and does not hide the other.
func (s *historyService) List(ctx context.Context, ws *Workspace, q HistoryQuery) models.History {
	var (
		wg   sync.WaitGroup
		hist models.History
	)
	load := func(kind models.PostListKind, page int, out *models.PostPage) {
		defer wg.Done()
		p, err := s.Page(ctx, ws, kind, page, q.Limit)
		if err != nil {
			slog.Warn("failed to load posts", "list", kind, "error", err)
			p.Error = err.Error()
		}
		*out = p
	}

	wg.Add(2)
	go load(models.PostListPublished, q.PublishedPage, &hist.Published)
	go load(models.PostListUnpublished, q.UnpublishedPage, &hist.Unpublished)
	wg.Wait()
	return hist
}

func (s *historyService) Page(ctx context.Context, ws *Workspace, kind models.PostListKind, page, limit int) (models.PostPage, error) {
	page, limit = normalizePage(page, limit)
	out := models.PostPage{Kind: kind, Posts: []models.PostView{}, Page: page, Limit: limit}

	resp, err := s.backend.PlatformPosts(ctx, ws.Token(), kind, page, limit)
	if err != nil {
		return out, err
	}

	dir := ws.Directory()
	now := s.clock.now()
	for _, row := range resp.Data {
		post := postFromRow(row)
		out.Posts = append(out.Posts, models.PostView{
			BackendPost: post,
			AccountName: dir.AccountName(post.SocialAccountID, post.Platform),
			Overdue:     post.Overdue(now),
		})
	}
	out.Total = resp.Total
	return out, nil
}

func (s *historyService) Update(ctx context.Context, ws *Workspace, postID string, upd models.PostUpdate) error {
	return s.backend.UpdatePlatformPost(ctx, ws.Token(), postID, upd, s.media.Open)
}

func (s *historyService) Delete(ctx context.Context, ws *Workspace, postID string) error {
	return s.backend.DeletePlatformPost(ctx, ws.Token(), postID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

func postFromRow(row transfer.PlatformPostRow) models.BackendPost {
	post := models.BackendPost{
		ID:               row.ID.String(),
		SocialAccountID:  row.SocialAccountID.String(),
		Platform:         models.Platform(strings.ToLower(row.Platform)),
		Status:           models.PostStatus(strings.ToLower(row.Status)),
		ScheduledAt:      row.ScheduledAt.Time(),
		GeneratedContent: row.GeneratedContent,
		PostURL:          row.PostURL,
		MediaAssets:      []models.MediaAsset{},
	}
	for _, a := range row.MediaAssets {
		url := a.URL
		if url == "" {
			url = a.FileURL
		}
		post.MediaAssets = append(post.MediaAssets, models.MediaAsset{
			ID:        a.ID.String(),
			URL:       url,
			MediaType: a.MediaType,
			FileName:  a.FileName,
		})
	}
	return post
}

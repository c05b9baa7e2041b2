package service

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: base} }

func (c *testClock) Clock() Clock {
	return func() time.Time {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.now
	}
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeBackend implements every backend interface in memory.
type fakeBackend struct {
	mu sync.Mutex

	meta       map[models.Platform][]transfer.MetaAccountRow
	metaErr    map[models.Platform]error
	youtube    []transfer.YouTubeAccountRow
	youtubeErr error
	authURL    string
	deleted    []string

	preview     *transfer.PreviewResponse
	previewReqs []transfer.PreviewRequest
	scheduled   []models.Submission
	uploaded    map[string]string
	scheduleErr error
	posts       map[models.PostListKind]*transfer.PlatformPostsPage
	postsErr    map[models.PostListKind]error

	// scheduling, when set, is signalled on entry to SchedulePost, which
	// then waits for scheduleGate to close.
	scheduling   chan struct{}
	scheduleGate chan struct{}

	key  transfer.APIKeyResponse
	puts []transfer.APIKeyRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meta:     map[models.Platform][]transfer.MetaAccountRow{},
		metaErr:  map[models.Platform]error{},
		authURL:  "https://auth.example/start",
		uploaded: map[string]string{},
		posts:    map[models.PostListKind]*transfer.PlatformPostsPage{},
		postsErr: map[models.PostListKind]error{},
	}
}

func (f *fakeBackend) Login(ctx context.Context, email, password string) (*transfer.LoginResponse, error) {
	if password != "pw" {
		return nil, &client.APIError{Status: 401, Message: "Incorrect email or password"}
	}
	return &transfer.LoginResponse{AccessToken: "tok-" + email}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req transfer.RegisterRequest) (*transfer.UserInfo, error) {
	return &transfer.UserInfo{ID: "9", Email: req.Email, FullName: req.FullName}, nil
}

func (f *fakeBackend) Me(ctx context.Context, token string) (*transfer.UserInfo, error) {
	return &transfer.UserInfo{ID: "9", Email: "me@example.com", FullName: "Me", Role: "user"}, nil
}

func (f *fakeBackend) MetaAccounts(ctx context.Context, token string, platform models.Platform) ([]transfer.MetaAccountRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.metaErr[platform]; err != nil {
		return nil, err
	}
	return append([]transfer.MetaAccountRow(nil), f.meta[platform]...), nil
}

func (f *fakeBackend) YouTubeAccounts(ctx context.Context, token string) ([]transfer.YouTubeAccountRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.youtubeErr != nil {
		return nil, f.youtubeErr
	}
	return append([]transfer.YouTubeAccountRow(nil), f.youtube...), nil
}

func (f *fakeBackend) DeleteMetaAccount(ctx context.Context, token, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	for p, rows := range f.meta {
		kept := rows[:0]
		for _, r := range rows {
			if r.ID.String() != id {
				kept = append(kept, r)
			}
		}
		f.meta[p] = kept
	}
	return nil
}

func (f *fakeBackend) AuthorizationURL(ctx context.Context, token string, platform models.Platform) (string, error) {
	return f.authURL + "?platform=" + string(platform), nil
}

func (f *fakeBackend) GeneratePreview(ctx context.Context, token string, req transfer.PreviewRequest) (*transfer.PreviewResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.previewReqs = append(f.previewReqs, req)
	return f.preview, nil
}

func (f *fakeBackend) SchedulePost(ctx context.Context, token string, sub models.Submission, open client.MediaOpener) (*transfer.ScheduleResponse, error) {
	if f.scheduling != nil {
		f.scheduling <- struct{}{}
		<-f.scheduleGate
	}
	if f.scheduleErr != nil {
		return nil, f.scheduleErr
	}
	for _, item := range sub.Media {
		rc, err := open(ctx, item)
		if err != nil {
			return nil, err
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		f.uploaded[item.FileName] = string(b)
	}
	f.mu.Lock()
	f.scheduled = append(f.scheduled, sub)
	f.mu.Unlock()
	return &transfer.ScheduleResponse{Message: "Post scheduled successfully"}, nil
}

func (f *fakeBackend) PlatformPosts(ctx context.Context, token string, kind models.PostListKind, page, limit int) (*transfer.PlatformPostsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.postsErr[kind]; err != nil {
		return nil, err
	}
	if p, ok := f.posts[kind]; ok {
		return p, nil
	}
	return &transfer.PlatformPostsPage{}, nil
}

func (f *fakeBackend) UpdatePlatformPost(ctx context.Context, token, postID string, upd models.PostUpdate, open client.MediaOpener) error {
	return nil
}

func (f *fakeBackend) DeletePlatformPost(ctx context.Context, token, postID string) error {
	return nil
}

func (f *fakeBackend) GetAPIKey(ctx context.Context, token string) (*transfer.APIKeyResponse, error) {
	resp := f.key
	return &resp, nil
}

func (f *fakeBackend) PutAPIKey(ctx context.Context, token string, req transfer.APIKeyRequest) error {
	f.puts = append(f.puts, req)
	return nil
}

func (f *fakeBackend) DeleteAPIKey(ctx context.Context, token string) error {
	f.key = transfer.APIKeyResponse{}
	return nil
}

// testDirectory has PageA on Facebook, InstaB on Instagram and Chan on YouTube.
func testDirectory() models.Directory {
	fb := models.NewMetaAccount(models.PlatformFacebook, models.MetaAccount{ID: "11"})
	fb.AccountName = "PageA"
	ig := models.NewMetaAccount(models.PlatformInstagram, models.MetaAccount{ID: "22"})
	ig.AccountName = "InstaB"
	yt := models.NewYouTubeAccount(models.YouTubeAccount{AccountID: "33", ChannelTitle: "Chan"})
	return models.NewDirectory(base, []models.PlatformAccount{fb}, []models.PlatformAccount{ig}, []models.PlatformAccount{yt})
}

func testWorkspace(clock Clock) *Workspace {
	ws := NewWorkspace("sess-1", &models.Session{ID: "9", Token: "tok"}, clock)
	ws.SetDirectory(testDirectory())
	return ws
}

func pngItem(id string) models.MediaItem {
	return models.MediaItem{ID: id, FileName: id + ".png", MIME: "image/png", Type: models.MediaTypeImage, Size: 1024}
}

func mp4Item(id string) models.MediaItem {
	return models.MediaItem{ID: id, FileName: id + ".mp4", MIME: "video/mp4", Type: models.MediaTypeVideo, Size: 5 << 20}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func connectOpts(probeEvery int) config.Connect {
	return config.Connect{
		PollInterval: time.Millisecond,
		SettleDelay:  time.Millisecond,
		ProbeEvery:   probeEvery,
		Timeout:      time.Minute,
	}
}

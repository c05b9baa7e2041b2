package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/client"
	"github.com/maheshrc27/postflow-studio/internal/events"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

func TestDirectoryPartialFailure(t *testing.T) {
	fb := newFakeBackend()
	fb.meta[models.PlatformFacebook] = []transfer.MetaAccountRow{{ID: "11", Name: "PageA"}}
	fb.metaErr[models.PlatformInstagram] = &client.APIError{Status: 500, Message: "boom"}
	fb.youtube = []transfer.YouTubeAccountRow{{AccountID: "33", ChannelTitle: "Chan"}}

	dir := NewDirectoryService(fb, newTestClock().Clock()).Fetch(context.Background(), "tok")

	if len(dir.Accounts) != 2 {
		t.Fatalf("accounts = %+v", dir.Accounts)
	}
	if len(dir.Mapping) != len(dir.Accounts) {
		t.Fatalf("mapping size %d != accounts %d", len(dir.Mapping), len(dir.Accounts))
	}
	if m := dir.Mapping["youtube-33"]; m.SocialAccountID != "33" || m.Platform != models.PlatformYouTube {
		t.Fatalf("youtube mapping = %+v", m)
	}
	if acc, _ := dir.Lookup("facebook-11"); acc.DisplayName() != "PageA" || !acc.Connected {
		t.Fatalf("facebook account = %+v", acc)
	}
}

func TestDirectoryFetchCheckedReportsFailedPlatforms(t *testing.T) {
	fb := newFakeBackend()
	fb.metaErr[models.PlatformInstagram] = &client.APIError{Status: 500, Message: "boom"}

	_, errs := NewDirectoryService(fb, newTestClock().Clock()).FetchChecked(context.Background(), "tok")

	if len(errs) != 1 || client.StatusOf(errs[models.PlatformInstagram]) != 500 {
		t.Fatalf("errs = %v", errs)
	}
	if !errs.Any(models.PlatformInstagram.Family()...) || errs.Any(models.PlatformYouTube) {
		t.Fatalf("Any = %v", errs)
	}
}

func TestDisconnectMetaRefreshesDirectory(t *testing.T) {
	fb := newFakeBackend()
	fb.meta[models.PlatformFacebook] = []transfer.MetaAccountRow{{ID: "11"}, {ID: "12"}}
	fb.youtube = []transfer.YouTubeAccountRow{{AccountID: "33"}}
	svc := NewDirectoryService(fb, newTestClock().Clock())
	ws := NewWorkspace("s", &models.Session{ID: "9", Token: "tok"}, nil)
	svc.Refresh(context.Background(), ws)

	mustNoErr(t, svc.Disconnect(context.Background(), ws, "facebook-11"))
	if _, ok := ws.Directory().Lookup("facebook-11"); ok {
		t.Fatal("disconnected account still listed")
	}
	if err := svc.Disconnect(context.Background(), ws, "youtube-33"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("youtube disconnect = %v", err)
	}
	if err := svc.Disconnect(context.Background(), ws, "facebook-99"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("unknown disconnect = %v", err)
	}
}

func TestHistoryNamesAndOverdue(t *testing.T) {
	fb := newFakeBackend()
	past := transfer.FlexibleTime(base.Add(-time.Hour))
	future := transfer.FlexibleTime(base.Add(time.Hour))
	fb.posts[models.PostListUnpublished] = &transfer.PlatformPostsPage{
		Data: []transfer.PlatformPostRow{
			{ID: "1", SocialAccountID: "11", Platform: "facebook", Status: "scheduled", ScheduledAt: past},
			{ID: "2", SocialAccountID: "99", Platform: "instagram", Status: "ready", ScheduledAt: future},
			{ID: "3", SocialAccountID: "33", Platform: "youtube", Status: "failed", ScheduledAt: past},
		},
		Total: 3,
	}
	fb.postsErr[models.PostListPublished] = &client.APIError{Status: 502, Message: "upstream down"}

	clock := newTestClock().Clock()
	svc := NewHistoryService(fb, nil, clock)
	hist := svc.List(context.Background(), testWorkspace(clock), HistoryQuery{Limit: 5})

	if hist.Published.Error != "upstream down" || len(hist.Published.Posts) != 0 {
		t.Fatalf("published = %+v", hist.Published)
	}
	posts := hist.Unpublished.Posts
	if len(posts) != 3 || hist.Unpublished.Limit != 5 || hist.Unpublished.Page != 1 {
		t.Fatalf("unpublished = %+v", hist.Unpublished)
	}

	tests := []struct {
		name    string
		overdue bool
	}{
		{"PageA", true},
		{"Instagram Account", false},
		{"Chan", false},
	}
	for i, tt := range tests {
		if posts[i].AccountName != tt.name || posts[i].Overdue != tt.overdue {
			t.Errorf("post %d: name=%q overdue=%v, want %q %v", i, posts[i].AccountName, posts[i].Overdue, tt.name, tt.overdue)
		}
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct{ page, limit, wantPage, wantLimit int }{
		{0, 0, 1, DefaultPageSize},
		{3, 500, 3, MaxPageSize},
		{2, 25, 2, 25},
	}
	for _, tt := range tests {
		p, l := normalizePage(tt.page, tt.limit)
		if p != tt.wantPage || l != tt.wantLimit {
			t.Errorf("normalizePage(%d, %d) = %d, %d", tt.page, tt.limit, p, l)
		}
	}
}

func TestSavingUnchangedKeysIsNoop(t *testing.T) {
	fb := newFakeBackend()
	fb.key = transfer.APIKeyResponse{Provider: "openai", APIKey: "sk-1", HasKey: true}
	hub := events.NewHub()
	var published []events.Event
	hub.Subscribe(func(e events.Event) { published = append(published, e) })

	svc := NewKeyService(fb, hub)
	ws := testWorkspace(nil)

	view, err := svc.Load(context.Background(), ws)
	mustNoErr(t, err)
	if view.HasUnsavedChanges || view.CanSave {
		t.Fatalf("after load: %+v", view)
	}

	saved, view, err := svc.Save(context.Background(), ws)
	mustNoErr(t, err)
	if saved || view.HasUnsavedChanges || view.CanSave || len(fb.puts) != 0 || len(published) != 0 {
		t.Fatalf("noop save: saved=%v view=%+v puts=%d events=%d", saved, view, len(fb.puts), len(published))
	}

	view = svc.Edit(ws, models.APIKeySettings{APIKey: "sk-2"})
	if !view.HasUnsavedChanges || !view.CanSave || view.Provider != "openai" {
		t.Fatalf("after edit: %+v", view)
	}
	saved, view, err = svc.Save(context.Background(), ws)
	mustNoErr(t, err)
	if !saved || view.HasUnsavedChanges || len(fb.puts) != 1 || fb.puts[0].APIKey != "sk-2" {
		t.Fatalf("real save: saved=%v view=%+v puts=%+v", saved, view, fb.puts)
	}
	if len(published) != 1 || published[0].Type != events.APIKeysUpdated || published[0].SessionID != "sess-1" {
		t.Fatalf("events = %+v", published)
	}

	view, err = svc.Delete(context.Background(), ws)
	mustNoErr(t, err)
	if view.HasKey || view.APIKey != "" || len(published) != 2 {
		t.Fatalf("after delete: %+v, events=%d", view, len(published))
	}
}

func TestSubmitWithMissingContentNeverCallsBackend(t *testing.T) {
	fb := newFakeBackend()
	clock := newTestClock().Clock()
	store, err := NewLocalStore(t.TempDir())
	mustNoErr(t, err)
	svc := NewComposerService(fb, NewMediaService(store), nil)

	ws := testWorkspace(clock)
	ws.WithComposer(func(c *Composer) error {
		c.ToggleAccount("facebook-11")
		return c.SetScheduledTime(base.Add(time.Hour))
	})

	if _, err := svc.Submit(context.Background(), ws, false); !errors.Is(err, ErrMissingContent) {
		t.Fatalf("Submit = %v", err)
	}
	if len(fb.scheduled) != 0 {
		t.Fatal("backend must not be called")
	}
}

func TestSubmitSendsMediaAndResetsDraft(t *testing.T) {
	fb := newFakeBackend()
	clock := newTestClock().Clock()
	store, err := NewLocalStore(t.TempDir())
	mustNoErr(t, err)
	media := NewMediaService(store)

	var notified []string
	svc := NewComposerService(fb, media, func(ws *Workspace) { notified = append(notified, ws.SessionID) })
	ws := testWorkspace(clock)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	item, err := media.Stage(context.Background(), ws.SessionID, "photo.png", bytes.NewReader(png), int64(len(png)))
	mustNoErr(t, err)
	if item.Type != models.MediaTypeImage || item.MIME != "image/png" {
		t.Fatalf("staged = %+v", item)
	}

	ws.WithComposer(func(c *Composer) error {
		c.EditCaption(models.ContentLongVideo, models.CaptionBox{Caption: "hello"})
		c.AttachMedia(item)
		c.ToggleAccount("facebook-11")
		c.TogglePostType("facebook-11", "facebook")
		return c.SetScheduledTime(base.Add(time.Hour))
	})

	res, err := svc.Submit(context.Background(), ws, false)
	mustNoErr(t, err)
	if res.Entries != 1 || res.Message != "Post scheduled successfully" {
		t.Fatalf("result = %+v", res)
	}
	if fb.uploaded["photo.png"] != string(png) {
		t.Fatal("media bytes were not streamed to the backend")
	}
	if len(notified) != 1 || notified[0] != "sess-1" {
		t.Fatalf("notified = %v", notified)
	}

	ws.WithComposer(func(c *Composer) error {
		d := c.Draft()
		if len(d.Media) != 0 || len(d.SelectedAccounts) != 0 || d.Boxes.HasText() {
			t.Fatalf("draft not reset: %+v", d)
		}
		return nil
	})
	if _, err := media.Open(context.Background(), item); !errors.Is(err, ErrUnknownMedia) {
		t.Fatalf("staged media should be discarded, Open = %v", err)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	fb := newFakeBackend()
	fb.scheduleErr = &client.APIError{Status: 400, Message: "Facebook token expired"}
	clock := newTestClock().Clock()
	store, _ := NewLocalStore(t.TempDir())
	svc := NewComposerService(fb, NewMediaService(store), nil)
	ws := testWorkspace(clock)
	ws.WithComposer(func(c *Composer) error {
		c.EditCaption(models.ContentLongVideo, models.CaptionBox{Caption: "hello"})
		c.ToggleAccount("facebook-11")
		c.TogglePostType("facebook-11", "facebook")
		return c.SetScheduledTime(base.Add(time.Hour))
	})

	_, err := svc.Submit(context.Background(), ws, false)
	if err == nil || err.Error() != "Facebook token expired" {
		t.Fatalf("Submit = %v", err)
	}
	ws.WithComposer(func(c *Composer) error {
		if len(c.Draft().SelectedAccounts) != 1 {
			t.Fatal("draft should survive a failed submit")
		}
		return nil
	})
}

func TestDraftEditsRefusedWhileSubmitting(t *testing.T) {
	fb := newFakeBackend()
	fb.scheduling = make(chan struct{})
	fb.scheduleGate = make(chan struct{})
	clock := newTestClock().Clock()
	store, err := NewLocalStore(t.TempDir())
	mustNoErr(t, err)
	media := NewMediaService(store)
	svc := NewComposerService(fb, media, nil)
	ws := testWorkspace(clock)
	ws.WithComposer(func(c *Composer) error {
		c.EditCaption(models.ContentLongVideo, models.CaptionBox{Caption: "hello"})
		c.ToggleAccount("facebook-11")
		c.TogglePostType("facebook-11", "facebook")
		return c.SetScheduledTime(base.Add(time.Hour))
	})

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	late, err := media.Stage(context.Background(), ws.SessionID, "late.png", bytes.NewReader(png), int64(len(png)))
	mustNoErr(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), ws, false)
		errc <- err
	}()
	<-fb.scheduling

	err = ws.WithComposer(func(c *Composer) error {
		c.AttachMedia(late)
		_, err := c.ToggleAccount("youtube-33")
		return err
	})
	if !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("edit mid-submit = %v", err)
	}
	if _, err := svc.Reset(context.Background(), ws); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("reset mid-submit = %v", err)
	}
	if v := ws.ComposerView(); len(v.Draft.SelectedAccounts) != 1 {
		t.Fatalf("view mid-submit = %+v", v.Draft)
	}

	close(fb.scheduleGate)
	mustNoErr(t, <-errc)

	// The refused edit left the staged file alone and it can still be attached.
	if _, err := media.Open(context.Background(), late); err != nil {
		t.Fatalf("late media was discarded: %v", err)
	}
	mustNoErr(t, ws.WithComposer(func(c *Composer) error {
		c.AttachMedia(late)
		return nil
	}))
	if d := ws.Draft(); len(d.Media) != 1 || d.Media[0].ID != late.ID {
		t.Fatalf("draft after submit = %+v", d)
	}
}

func TestReleaseMidSubmitLeavesMediaToSubmission(t *testing.T) {
	fb := newFakeBackend()
	fb.scheduling = make(chan struct{})
	fb.scheduleGate = make(chan struct{})
	fb.scheduleErr = &client.APIError{Status: 502, Message: "bad gateway"}
	clock := newTestClock().Clock()
	store, err := NewLocalStore(t.TempDir())
	mustNoErr(t, err)
	media := NewMediaService(store)
	svc := NewComposerService(fb, media, nil)
	ws := testWorkspace(clock)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	item, err := media.Stage(context.Background(), ws.SessionID, "photo.png", bytes.NewReader(png), int64(len(png)))
	mustNoErr(t, err)
	ws.WithComposer(func(c *Composer) error {
		c.EditCaption(models.ContentLongVideo, models.CaptionBox{Caption: "hello"})
		c.AttachMedia(item)
		c.ToggleAccount("facebook-11")
		c.TogglePostType("facebook-11", "facebook")
		return c.SetScheduledTime(base.Add(time.Hour))
	})

	errc := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), ws, false)
		errc <- err
	}()
	<-fb.scheduling

	if staged := ws.Release(); len(staged) != 0 {
		t.Fatalf("release mid-submit returned %v", staged)
	}
	if _, err := media.Open(context.Background(), item); err != nil {
		t.Fatalf("media in flight was discarded: %v", err)
	}

	close(fb.scheduleGate)
	if err := <-errc; client.StatusOf(err) != 502 {
		t.Fatalf("Submit = %v", err)
	}
	if _, err := media.Open(context.Background(), item); !errors.Is(err, ErrUnknownMedia) {
		t.Fatalf("released workspace media should be discarded, Open = %v", err)
	}
}

func TestGenerateNeedsPrompt(t *testing.T) {
	fb := newFakeBackend()
	fb.preview = &transfer.PreviewResponse{LongVideo: &transfer.CaptionDraft{Caption: "Generated caption"}}
	svc := NewComposerService(fb, nil, nil)
	ws := testWorkspace(newTestClock().Clock())

	if _, err := svc.Generate(context.Background(), ws); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("Generate without prompt = %v", err)
	}

	ws.WithComposer(func(c *Composer) error { c.SetPrompt("  spring sale  "); return nil })
	view, err := svc.Generate(context.Background(), ws)
	mustNoErr(t, err)
	if view.Draft.Boxes.LongVideo.Caption != "Generated caption" {
		t.Fatalf("boxes = %+v", view.Draft.Boxes)
	}
	if fb.previewReqs[0].Prompt != "spring sale" || len(fb.previewReqs[0].ContentTypes) != 3 {
		t.Fatalf("preview request = %+v", fb.previewReqs[0])
	}
}

func TestStageRejectsUnknownContent(t *testing.T) {
	store, _ := NewLocalStore(t.TempDir())
	media := NewMediaService(store)
	body := strings.NewReader("just some text, not an image")
	if _, err := media.Stage(context.Background(), "s", "notes.txt", body, int64(body.Len())); !errors.Is(err, ErrUnsupportedMedia) {
		t.Fatalf("Stage = %v", err)
	}
}

func TestAuthLoginFetchesProfileWhenMissing(t *testing.T) {
	store, err := repository.NewFileStorage(t.TempDir())
	mustNoErr(t, err)
	sessions := repository.NewSessionRepository(store, "", 0)
	svc := NewAuthService(newFakeBackend(), sessions)

	s, err := svc.Login(context.Background(), "cli", "me@example.com", "pw")
	mustNoErr(t, err)
	if s.ID != "9" || s.FullName != "Me" || s.Token != "tok-me@example.com" {
		t.Fatalf("session = %+v", s)
	}
	loaded, err := svc.Current(context.Background(), "cli")
	mustNoErr(t, err)
	if *loaded != *s {
		t.Fatalf("loaded = %+v", loaded)
	}

	if _, err := svc.Login(context.Background(), "cli", "me@example.com", "bad"); client.StatusOf(err) != 401 {
		t.Fatalf("bad password = %v", err)
	}
	mustNoErr(t, svc.Logout(context.Background(), "cli"))
	if _, err := svc.Current(context.Background(), "cli"); !errors.Is(err, repository.ErrNoSession) {
		t.Fatalf("after logout = %v", err)
	}
}

// manualRunner records watch requests so tests can drive Watch directly.
type manualRunner struct {
	mu  sync.Mutex
	ids []string
}

func (r *manualRunner) RunConnectWatch(_ context.Context, attemptID, _ string) error {
	r.mu.Lock()
	r.ids = append(r.ids, attemptID)
	r.mu.Unlock()
	return nil
}

type failingLauncher struct{}

func (failingLauncher) Launch(context.Context, *models.ConnectAttempt) error {
	return errors.New("popup blocked")
}

type settledCall struct {
	attempt *models.ConnectAttempt
	dir     models.Directory
}

func newConnectFixture(t *testing.T, launcher Launcher, probeEvery int) (*fakeBackend, ConnectService, *manualRunner, *testClock, *[]settledCall) {
	t.Helper()
	fb := newFakeBackend()
	fb.youtube = []transfer.YouTubeAccountRow{{AccountID: "33", ChannelTitle: "Chan"}}
	store, err := repository.NewFileStorage(t.TempDir())
	mustNoErr(t, err)
	clock := newTestClock()

	var settled []settledCall
	dirSvc := NewDirectoryService(fb, clock.Clock())
	svc := NewConnectService(fb, dirSvc, repository.NewConnectRepository(store), launcher, connectOpts(probeEvery), clock.Clock(),
		func(ctx context.Context, a *models.ConnectAttempt, dir models.Directory) {
			settled = append(settled, settledCall{attempt: a, dir: dir})
		})
	runner := &manualRunner{}
	svc.UseRunner(runner)
	return fb, svc, runner, clock, &settled
}

func TestConnectValidAfterWindowCloses(t *testing.T) {
	fb, svc, runner, _, settled := newConnectFixture(t, nil, 0)
	ctx := context.Background()
	ws := testWorkspace(nil)

	a, err := svc.Start(ctx, ws, models.PlatformYouTube)
	mustNoErr(t, err)
	if a.State != models.ConnectValidating || !strings.Contains(a.AuthURL, "youtube") || len(runner.ids) != 1 {
		t.Fatalf("started = %+v, runs=%v", a, runner.ids)
	}

	fb.mu.Lock()
	fb.youtube = append(fb.youtube, transfer.YouTubeAccountRow{AccountID: "44", ChannelTitle: "New Channel"})
	fb.mu.Unlock()
	_, err = svc.WindowClosed(ctx, "sess-1", a.ID)
	mustNoErr(t, err)

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectValid || done.AccountID != "youtube-44" || done.Message != "New Channel connected." {
		t.Fatalf("done = %+v", done)
	}
	if len(*settled) != 1 || (*settled)[0].attempt.AccountID != "youtube-44" {
		t.Fatalf("settled = %+v", *settled)
	}
	if _, ok := (*settled)[0].dir.Lookup("youtube-44"); !ok {
		t.Fatal("settled directory must contain the new channel")
	}
}

func TestConnectInvalidWhenWindowClosesWithoutAccount(t *testing.T) {
	fb, svc, _, _, settled := newConnectFixture(t, nil, 0)
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformYouTube)
	mustNoErr(t, err)
	fb.mu.Lock()
	fb.youtube[0].ChannelTitle = "Renamed"
	fb.mu.Unlock()
	svc.WindowClosed(ctx, "sess-1", a.ID)

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectInvalid || !strings.Contains(done.Message, "Window closed") {
		t.Fatalf("done = %+v", done)
	}
	// The account list is still handed over so the workspace is not stale.
	if len(*settled) != 1 || (*settled)[0].attempt.State != models.ConnectInvalid {
		t.Fatalf("settled = %+v", *settled)
	}
	acc, ok := (*settled)[0].dir.Lookup("youtube-33")
	if !ok || acc.DisplayName() != "Renamed" {
		t.Fatalf("settled account = %+v, %v", acc, ok)
	}
}

func TestConnectReauthorizedAccountIsValid(t *testing.T) {
	inactive, active := false, true
	fb, svc, _, _, settled := newConnectFixture(t, nil, 0)
	fb.youtube = []transfer.YouTubeAccountRow{{AccountID: "33", ChannelTitle: "Chan", IsActive: &inactive}}
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformYouTube)
	mustNoErr(t, err)

	fb.mu.Lock()
	fb.youtube[0].IsActive = &active
	fb.mu.Unlock()
	svc.WindowClosed(ctx, "sess-1", a.ID)

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectValid || done.AccountID != "youtube-33" {
		t.Fatalf("done = %+v", done)
	}
	if len(*settled) != 1 {
		t.Fatalf("settled = %+v", *settled)
	}
	if acc, ok := (*settled)[0].dir.Lookup("youtube-33"); !ok || !acc.Connected {
		t.Fatalf("settled account = %+v, %v", acc, ok)
	}
}

func TestConnectFailedBaselineIsNeverValid(t *testing.T) {
	fb, svc, _, _, settled := newConnectFixture(t, nil, 0)
	fb.youtubeErr = &client.APIError{Status: 502, Message: "bad gateway"}
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformYouTube)
	mustNoErr(t, err)
	if a.BaselineKnown {
		t.Fatalf("baseline must be unknown: %+v", a)
	}

	fb.mu.Lock()
	fb.youtubeErr = nil
	fb.mu.Unlock()
	svc.WindowClosed(ctx, "sess-1", a.ID)

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectInvalid || done.AccountID != "" {
		t.Fatalf("done = %+v", done)
	}
	if len(*settled) != 1 {
		t.Fatalf("settled = %+v", *settled)
	}
	if _, ok := (*settled)[0].dir.Lookup("youtube-33"); !ok {
		t.Fatal("settled directory must still be refreshed")
	}
}

func TestConnectFailedListingAfterCloseIsNotValid(t *testing.T) {
	fb, svc, _, _, _ := newConnectFixture(t, nil, 0)
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformInstagram)
	mustNoErr(t, err)

	fb.mu.Lock()
	fb.meta[models.PlatformFacebook] = []transfer.MetaAccountRow{{ID: "77", Name: "Fresh Page"}}
	fb.metaErr[models.PlatformInstagram] = &client.APIError{Status: 500, Message: "boom"}
	fb.mu.Unlock()
	svc.WindowClosed(ctx, "sess-1", a.ID)

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectInvalid {
		t.Fatalf("done = %+v", done)
	}
}

func TestConnectRetriesBaselineWhileWindowOpen(t *testing.T) {
	fb, svc, _, _, _ := newConnectFixture(t, nil, 1)
	fb.youtubeErr = &client.APIError{Status: 502, Message: "bad gateway"}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformYouTube)
	mustNoErr(t, err)

	fb.mu.Lock()
	fb.youtubeErr = nil
	fb.mu.Unlock()

	type result struct {
		a   *models.ConnectAttempt
		err error
	}
	out := make(chan result, 1)
	go func() {
		done, err := svc.Watch(ctx, a.ID, "tok")
		out <- result{done, err}
	}()

	for {
		cur, err := svc.Status(ctx, "sess-1", a.ID)
		mustNoErr(t, err)
		if cur.BaselineKnown {
			if _, ok := cur.Baseline["youtube-33"]; !ok {
				t.Fatalf("baseline = %v", cur.Baseline)
			}
			break
		}
		time.Sleep(time.Millisecond)
	}
	fb.mu.Lock()
	fb.youtube = append(fb.youtube, transfer.YouTubeAccountRow{AccountID: "44", ChannelTitle: "New Channel"})
	fb.mu.Unlock()

	r := <-out
	mustNoErr(t, r.err)
	if r.a.State != models.ConnectValid || r.a.AccountID != "youtube-44" {
		t.Fatalf("done = %+v", r.a)
	}
}

func TestConnectFindsAccountWhileWindowOpen(t *testing.T) {
	fb, svc, _, _, _ := newConnectFixture(t, nil, 1)
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformInstagram)
	mustNoErr(t, err)

	fb.mu.Lock()
	fb.meta[models.PlatformFacebook] = []transfer.MetaAccountRow{{ID: "77", Name: "Fresh Page"}}
	fb.mu.Unlock()

	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectValid || done.AccountID != "facebook-77" {
		t.Fatalf("done = %+v", done)
	}
}

func TestConnectLauncherFailureIsInvalid(t *testing.T) {
	_, svc, runner, _, _ := newConnectFixture(t, failingLauncher{}, 0)
	a, err := svc.Start(context.Background(), testWorkspace(nil), models.PlatformFacebook)
	mustNoErr(t, err)
	if a.State != models.ConnectInvalid || !strings.Contains(a.Message, "Popup blocked") {
		t.Fatalf("attempt = %+v", a)
	}
	if len(runner.ids) != 0 {
		t.Fatal("watcher must not start for a blocked popup")
	}
}

func TestConnectBlockedSignalAndOwnership(t *testing.T) {
	_, svc, _, _, _ := newConnectFixture(t, nil, 0)
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformFacebook)
	mustNoErr(t, err)

	if _, err := svc.Status(ctx, "someone-else", a.ID); !errors.Is(err, ErrAttemptNotFound) {
		t.Fatalf("foreign status = %v", err)
	}
	done, err := svc.Blocked(ctx, "sess-1", a.ID)
	mustNoErr(t, err)
	if done.State != models.ConnectInvalid {
		t.Fatalf("blocked = %+v", done)
	}
	again, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if again.State != models.ConnectInvalid {
		t.Fatal("a decided attempt stays decided")
	}
}

func TestConnectTimesOut(t *testing.T) {
	_, svc, _, clock, _ := newConnectFixture(t, nil, 0)
	ctx := context.Background()
	a, err := svc.Start(ctx, testWorkspace(nil), models.PlatformYouTube)
	mustNoErr(t, err)

	clock.Advance(time.Hour)
	done, err := svc.Watch(ctx, a.ID, "tok")
	mustNoErr(t, err)
	if done.State != models.ConnectInvalid || !strings.Contains(done.Message, "Timed out") {
		t.Fatalf("done = %+v", done)
	}
}

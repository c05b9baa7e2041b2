package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "/relative"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Errorf("New(%q) should fail", raw)
		}
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message", `{"message":"quota exceeded","detail":"ignored"}`, "quota exceeded"},
		{"detail string", `{"detail":"Not authenticated"}`, "Not authenticated"},
		{"detail list", `{"detail":[{"msg":"field required"},{"msg":"bad time"}]}`, "field required; bad time"},
		{"error", `{"error":"boom"}`, "boom"},
		{"no json", `<html>oops</html>`, "502 Bad Gateway"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, tt.body)
			}))
			_, err := c.YouTubeAccounts(context.Background(), "tok")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Message != tt.want || apiErr.Status != http.StatusBadGateway {
				t.Fatalf("got %d %q, want %q", apiErr.Status, apiErr.Message, tt.want)
			}
			if StatusOf(err) != http.StatusBadGateway {
				t.Fatalf("StatusOf = %d", StatusOf(err))
			}
		})
	}
}

func TestLoginSendsPasswordForm(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if r.Header.Get("Authorization") != "" {
			t.Error("login must not carry a bearer token")
		}
		r.ParseForm()
		if r.PostForm.Get("username") != "a@b.c" || r.PostForm.Get("password") != "pw" {
			t.Errorf("form = %v", r.PostForm)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-1",
			"user":         map[string]any{"id": 7, "email": "a@b.c", "full_name": "A", "role": "user"},
		})
	}))

	resp, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken != "tok-1" || resp.User == nil || resp.User.ID.String() != "7" {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-2" {
			t.Errorf("Authorization = %q", got)
		}
		io.WriteString(w, `[{"id":"12","name":"PageA"},{"id":13,"name":"PageB"}]`)
	}))

	rows, err := c.MetaAccounts(context.Background(), "tok-2", models.PlatformFacebook)
	if err != nil {
		t.Fatalf("MetaAccounts: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "12" || rows[1].ID != "13" {
		t.Fatalf("rows = %+v", rows)
	}
	if _, err := c.MetaAccounts(context.Background(), "tok-2", models.PlatformYouTube); err == nil {
		t.Fatal("youtube is not a meta platform")
	}
}

func TestPlatformPostsAcceptsBothShapes(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/scheduled-videos/platform-posts/published":
			if r.URL.Query().Get("page") != "2" || r.URL.Query().Get("limit") != "5" {
				t.Errorf("query = %s", r.URL.RawQuery)
			}
			io.WriteString(w, `{"data":[{"id":1,"social_account_id":"9","platform":"facebook","status":"published"}],"total":6}`)
		case "/scheduled-videos/platform-posts/unpublished":
			io.WriteString(w, `[{"id":"a"},{"id":"b"}]`)
		default:
			http.NotFound(w, r)
		}
	}))

	pub, err := c.PlatformPosts(context.Background(), "t", models.PostListPublished, 2, 5)
	if err != nil {
		t.Fatalf("published: %v", err)
	}
	if pub.Total != 6 || pub.Page != 2 || pub.Limit != 5 || len(pub.Data) != 1 || pub.Data[0].SocialAccountID != "9" {
		t.Fatalf("published = %+v", pub)
	}
	unpub, err := c.PlatformPosts(context.Background(), "t", models.PostListUnpublished, 0, 0)
	if err != nil {
		t.Fatalf("unpublished: %v", err)
	}
	if unpub.Total != 2 || len(unpub.Data) != 2 {
		t.Fatalf("unpublished = %+v", unpub)
	}
}

func TestSchedulePostMultipart(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 30, 0, 0, time.FixedZone("x", 3600))
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("scheduled_time"); got != "2026-05-01T09:30:00Z" {
			t.Errorf("scheduled_time = %q", got)
		}
		if got := r.FormValue("prompt"); got != "launch" {
			t.Errorf("prompt = %q", got)
		}
		var entries []models.PlatformEntry
		if err := json.Unmarshal([]byte(r.FormValue("platform_specific_data")), &entries); err != nil || len(entries) != 1 {
			t.Errorf("entries = %v (%v)", entries, err)
		}
		var boxes map[string]json.RawMessage
		if err := json.Unmarshal([]byte(r.FormValue("content_boxes")), &boxes); err != nil || len(boxes) != 3 {
			t.Errorf("boxes = %v (%v)", boxes, err)
		}
		files := r.MultipartForm.File["media_files"]
		if len(files) != 1 || files[0].Filename != "a.png" || files[0].Header.Get("Content-Type") != "image/png" {
			t.Errorf("files = %+v", files)
		}
		io.WriteString(w, `{"message":"scheduled"}`)
	}))

	sub := models.Submission{
		Prompt:        "launch",
		ScheduledTime: at,
		Boxes:         models.NewContentBoxes(),
		Media:         []models.MediaItem{{ID: "m1", FileName: "a.png", MIME: "image/png", Type: models.MediaTypeImage}},
		Entries:       []models.PlatformEntry{{Platform: models.PlatformFacebook, SocialAccountID: "1", Type: "facebook"}},
	}
	open := func(ctx context.Context, item models.MediaItem) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("png-bytes")), nil
	}
	resp, err := c.SchedulePost(context.Background(), "tok", sub, open)
	if err != nil {
		t.Fatalf("SchedulePost: %v", err)
	}
	if resp.Message != "scheduled" {
		t.Fatalf("message = %q", resp.Message)
	}
}

func TestAuthorizationURLPerPlatform(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/facebook/auth/facebook/init":
			io.WriteString(w, `{"auth_url":"https://facebook.example/oauth"}`)
		case r.Method == http.MethodPost && r.URL.Path == "/youtube/connect":
			io.WriteString(w, `{"authorization_url":"https://google.example/oauth"}`)
		default:
			http.NotFound(w, r)
		}
	}))

	fb, err := c.AuthorizationURL(context.Background(), "t", models.PlatformInstagram)
	if err != nil || fb != "https://facebook.example/oauth" {
		t.Fatalf("facebook = %q, %v", fb, err)
	}
	yt, err := c.AuthorizationURL(context.Background(), "t", models.PlatformYouTube)
	if err != nil || yt != "https://google.example/oauth" {
		t.Fatalf("youtube = %q, %v", yt, err)
	}
}

func TestRegisterPostsJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req transfer.RegisterRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Email != "new@x.io" || req.FullName != "New" {
			t.Errorf("req = %+v", req)
		}
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"u1","email":"new@x.io"}`)
	}))
	user, err := c.Register(context.Background(), transfer.RegisterRequest{Email: "new@x.io", Password: "p", FullName: "New"})
	if err != nil || user.ID != "u1" {
		t.Fatalf("Register = %+v, %v", user, err)
	}
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/transfer"
	"golang.org/x/oauth2"
)

// APIError is a non-2xx answer from the scheduling backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

// Client talks to the scheduling backend. It is safe for concurrent use;
// the bearer token is supplied per call.
type Client struct {
	baseURL   *url.URL
	base      *http.Client
	timeout   time.Duration
	userAgent string
}

func New(opt Options) (*Client, error) {
	if opt.BaseURL == "" {
		return nil, errors.New("base url is required")
	}
	u, err := url.Parse(strings.TrimRight(opt.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opt.BaseURL)
	}

	timeout := opt.Timeout
	if timeout == 0 {
		timeout = 2 * time.Minute
	}
	base := opt.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: timeout}
	}
	ua := opt.UserAgent
	if ua == "" {
		ua = "postflow-studio"
	}

	return &Client{baseURL: u, base: base, timeout: timeout, userAgent: ua}, nil
}

// httpClient returns a client that attaches token as a bearer credential.
func (c *Client) httpClient(ctx context.Context, token string) *http.Client {
	if token == "" {
		return c.base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
	hc.Timeout = c.base.Timeout
	return hc
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(c.baseURL.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) doJSON(ctx context.Context, token, method, path string, query url.Values, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, token, req, out)
}

func (c *Client) doForm(ctx context.Context, token, method, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, token, req, out)
}

// doMultipart streams the body produced by write through a pipe so large
// media never has to be buffered in memory.
func (c *Client) doMultipart(ctx context.Context, token, method, path string, write func(*multipart.Writer) error, out any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := write(mw)
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, nil), pr)
	if err != nil {
		pr.CloseWithError(err)
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	err = c.do(ctx, token, req, out)
	pr.CloseWithError(io.ErrClosedPipe)
	return err
}

func (c *Client) do(ctx context.Context, token string, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient(ctx, token).Do(req)
	if err != nil {
		slog.Error("backend request failed", "method", req.Method, "path", req.URL.Path, "error", err)
		return fmt.Errorf("request %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		slog.Info("backend rejected request", "method", req.Method, "path", req.URL.Path, "status", resp.StatusCode, "error", apiErr.Message)
		return apiErr
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

func decodeError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{Status: resp.StatusCode}

	var er transfer.ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil {
		switch {
		case er.Message != "":
			apiErr.Message = er.Message
		case len(er.Detail) > 0:
			apiErr.Message = detailMessage(er.Detail)
		case er.Error != "":
			apiErr.Message = er.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return apiErr
}

// detailMessage flattens detail, which is either a string or a list of
// validation entries carrying a msg field.
func detailMessage(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var entries []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &entries); err == nil {
		msgs := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.Msg != "" {
				msgs = append(msgs, e.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func createFilePart(mw *multipart.Writer, field, filename, contentType string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return mw.CreatePart(h)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

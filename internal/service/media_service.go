package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/maheshrc27/postflow-studio/internal/models"
)

// sniffLen is enough for filetype to recognise every supported container.
const sniffLen = 262

var allowedMedia = map[string]models.MediaType{
	"jpg":  models.MediaTypeImage,
	"png":  models.MediaTypeImage,
	"gif":  models.MediaTypeImage,
	"webp": models.MediaTypeImage,
	"mp4":  models.MediaTypeVideo,
	"mov":  models.MediaTypeVideo,
	"webm": models.MediaTypeVideo,
	"avi":  models.MediaTypeVideo,
}

// MediaStore holds staged uploads until they are sent to the backend.
type MediaStore interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type MediaService interface {
	Stage(ctx context.Context, sessionID, fileName string, body io.ReadSeeker, size int64) (models.MediaItem, error)
	Open(ctx context.Context, item models.MediaItem) (io.ReadCloser, error)
	Discard(ctx context.Context, items ...models.MediaItem)
}

type mediaService struct {
	store MediaStore
}

func NewMediaService(store MediaStore) MediaService {
	return &mediaService{store: store}
}

// Stage detects the real type of body from its leading bytes, rejects
// anything that is not a supported image or video and stores it.
func (s *mediaService) Stage(ctx context.Context, sessionID, fileName string, body io.ReadSeeker, size int64) (models.MediaItem, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return models.MediaItem{}, err
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == types.Unknown {
		return models.MediaItem{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, fileName)
	}
	mediaType, ok := allowedMedia[kind.Extension]
	if !ok {
		return models.MediaItem{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedMedia, fileName, kind.Extension)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return models.MediaItem{}, err
	}

	id, err := newID()
	if err != nil {
		slog.Info(err.Error())
		return models.MediaItem{}, err
	}
	item := models.MediaItem{
		ID:       id,
		FileName: cleanFileName(fileName, kind.Extension),
		MIME:     kind.MIME.Value,
		Type:     mediaType,
		Size:     size,
		Key:      path.Join("media", sessionID, id+"."+kind.Extension),
	}
	if err := s.store.Put(ctx, item.Key, body, size, item.MIME); err != nil {
		return models.MediaItem{}, fmt.Errorf("stage %s: %w", item.FileName, err)
	}
	return item, nil
}

func (s *mediaService) Open(ctx context.Context, item models.MediaItem) (io.ReadCloser, error) {
	return s.store.Open(ctx, item.Key)
}

func (s *mediaService) Discard(ctx context.Context, items ...models.MediaItem) {
	for _, item := range items {
		if err := s.store.Delete(ctx, item.Key); err != nil {
			slog.Warn("failed to delete staged media", "key", item.Key, "error", err)
		}
	}
}

func cleanFileName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload." + ext
	}
	return name
}

// localStore keeps staged media on the local filesystem.
type localStore struct {
	root string
}

func NewLocalStore(root string) (MediaStore, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, err
	}
	return &localStore{root: root}, nil
}

func (l *localStore) path(key string) (string, error) {
	p := filepath.Join(l.root, filepath.FromSlash(key))
	if !strings.HasPrefix(p, filepath.Clean(l.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return p, nil
}

func (l *localStore) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(p)
		return err
	}
	return f.Close()
}

func (l *localStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	p, err := l.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrUnknownMedia
	}
	return f, err
}

func (l *localStore) Delete(ctx context.Context, key string) error {
	p, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

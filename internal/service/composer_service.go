package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

type SubmitResult struct {
	Message  string   `json:"message"`
	Entries  int      `json:"entries"`
	Excluded []string `json:"excluded,omitempty"`
}

type ComposerService interface {
	Generate(ctx context.Context, ws *Workspace) (ComposerView, error)
	Submit(ctx context.Context, ws *Workspace, confirmIncompatible bool) (*SubmitResult, error)
	Reset(ctx context.Context, ws *Workspace) (ComposerView, error)
}

type composerService struct {
	backend     PostsBackend
	media       MediaService
	onScheduled func(ws *Workspace)
}

// NewComposerService calls onScheduled after every accepted submission.
func NewComposerService(backend PostsBackend, media MediaService, onScheduled func(ws *Workspace)) ComposerService {
	return &composerService{backend: backend, media: media, onScheduled: onScheduled}
}

// Generate asks the backend for drafts of the targeted boxes and writes them
// into the draft.
func (s *composerService) Generate(ctx context.Context, ws *Workspace) (ComposerView, error) {
	var req transfer.PreviewRequest
	err := ws.WithComposer(func(c *Composer) error {
		prompt := strings.TrimSpace(c.draft.Prompt)
		if prompt == "" {
			return ErrEmptyPrompt
		}
		req = transfer.PreviewRequest{Prompt: prompt, ContentTypes: c.PreviewKinds()}
		return nil
	})
	if err != nil {
		return ComposerView{}, err
	}

	resp, err := s.backend.GeneratePreview(ctx, ws.Token(), req)
	if err != nil {
		return ComposerView{}, err
	}

	var view ComposerView
	err = ws.WithComposer(func(c *Composer) error {
		c.ApplyPreview(resp)
		view = c.View()
		return nil
	})
	if err != nil {
		return ComposerView{}, err
	}
	return view, nil
}

// Submit sends the draft as one request. The draft and its staged media are
// only released once the backend accepts it. Edits are refused until Submit
// returns, so the reset below only clears what was sent.
func (s *composerService) Submit(ctx context.Context, ws *Workspace, confirmIncompatible bool) (*SubmitResult, error) {
	if err := ws.beginSubmit(); err != nil {
		return nil, err
	}
	defer func() {
		if orphaned := ws.endSubmit(); len(orphaned) > 0 {
			s.media.Discard(context.Background(), orphaned...)
		}
	}()

	var sub models.Submission
	err := ws.withComposer(func(c *Composer) error {
		var err error
		sub, err = c.Build(confirmIncompatible)
		return err
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.backend.SchedulePost(ctx, ws.Token(), sub, s.media.Open)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var staged []models.MediaItem
	ws.withComposer(func(c *Composer) error {
		staged = c.Reset()
		return nil
	})
	s.media.Discard(ctx, staged...)

	if s.onScheduled != nil {
		s.onScheduled(ws)
	}

	msg := resp.Message
	if msg == "" {
		msg = "Post scheduled"
	}
	return &SubmitResult{Message: msg, Entries: len(sub.Entries), Excluded: sub.Excluded}, nil
}

func (s *composerService) Reset(ctx context.Context, ws *Workspace) (ComposerView, error) {
	var (
		staged []models.MediaItem
		view   ComposerView
	)
	err := ws.WithComposer(func(c *Composer) error {
		staged = c.Reset()
		view = c.View()
		return nil
	})
	if err != nil {
		return ComposerView{}, err
	}
	s.media.Discard(ctx, staged...)
	return view, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/maheshrc27/postflow-studio/internal/events"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/transfer"
)

const defaultProvider = "openai"

type KeyService interface {
	Load(ctx context.Context, ws *Workspace) (models.APIKeyFormView, error)
	Edit(ws *Workspace, next models.APIKeySettings) models.APIKeyFormView
	Save(ctx context.Context, ws *Workspace) (saved bool, view models.APIKeyFormView, err error)
	Delete(ctx context.Context, ws *Workspace) (models.APIKeyFormView, error)
}

type keyService struct {
	backend KeysBackend
	hub     *events.Hub
}

func NewKeyService(backend KeysBackend, hub *events.Hub) KeyService {
	return &keyService{backend: backend, hub: hub}
}

func (s *keyService) Load(ctx context.Context, ws *Workspace) (models.APIKeyFormView, error) {
	resp, err := s.backend.GetAPIKey(ctx, ws.Token())
	if err != nil {
		return models.APIKeyFormView{}, err
	}
	provider := resp.Provider
	if provider == "" {
		provider = defaultProvider
	}

	var view models.APIKeyFormView
	ws.WithKeys(func(f *models.APIKeyForm) error {
		f.Load(models.APIKeySettings{Provider: provider, APIKey: resp.APIKey}, resp.HasKey)
		view = f.View()
		return nil
	})
	return view, nil
}

func (s *keyService) Edit(ws *Workspace, next models.APIKeySettings) models.APIKeyFormView {
	var view models.APIKeyFormView
	ws.WithKeys(func(f *models.APIKeyForm) error {
		if next.Provider == "" {
			next.Provider = f.Current.Provider
		}
		f.Edit(next)
		view = f.View()
		return nil
	})
	return view
}

// Save sends the form only when it differs from what was loaded. An
// unchanged form is a no-op and reports saved=false.
func (s *keyService) Save(ctx context.Context, ws *Workspace) (bool, models.APIKeyFormView, error) {
	var (
		pending models.APIKeySettings
		view    models.APIKeyFormView
	)
	err := ws.WithKeys(func(f *models.APIKeyForm) error {
		if !f.HasUnsavedChanges() {
			view = f.View()
			return errNoChanges
		}
		if !f.CanSave() {
			view = f.View()
			return ErrNothingToSave
		}
		f.Saving = true
		pending = f.Current
		return nil
	})
	if errors.Is(err, errNoChanges) {
		return false, view, nil
	}
	if err != nil {
		return false, view, err
	}

	putErr := s.backend.PutAPIKey(ctx, ws.Token(), transfer.APIKeyRequest{Provider: pending.Provider, APIKey: pending.APIKey})

	ws.WithKeys(func(f *models.APIKeyForm) error {
		f.Saving = false
		if putErr == nil {
			f.Saved = pending
			f.HasKey = pending.APIKey != ""
		}
		view = f.View()
		return nil
	})
	if putErr != nil {
		slog.Info(putErr.Error())
		return false, view, putErr
	}

	s.hub.Publish(events.Event{Type: events.APIKeysUpdated, SessionID: ws.SessionID})
	return true, view, nil
}

func (s *keyService) Delete(ctx context.Context, ws *Workspace) (models.APIKeyFormView, error) {
	if err := s.backend.DeleteAPIKey(ctx, ws.Token()); err != nil {
		return models.APIKeyFormView{}, err
	}
	var view models.APIKeyFormView
	ws.WithKeys(func(f *models.APIKeyForm) error {
		f.Clear()
		view = f.View()
		return nil
	})
	s.hub.Publish(events.Event{Type: events.APIKeysUpdated, SessionID: ws.SessionID})
	return view, nil
}

var errNoChanges = errors.New("no changes")

package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
)

const (
	connectPrefix = "connect:"
	connectTTL    = time.Hour
)

type ConnectRepository interface {
	Save(ctx context.Context, a *models.ConnectAttempt) error
	GetByID(ctx context.Context, id string) (*models.ConnectAttempt, error)
}

type connectRepository struct {
	store Storage
}

func NewConnectRepository(store Storage) ConnectRepository {
	return &connectRepository{store: store}
}

func (r *connectRepository) Save(ctx context.Context, a *models.ConnectAttempt) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, connectPrefix+a.ID, data, connectTTL)
}

// GetByID returns ErrNotFound once the attempt has expired.
func (r *connectRepository) GetByID(ctx context.Context, id string) (*models.ConnectAttempt, error) {
	data, err := r.store.Get(ctx, connectPrefix+id)
	if err != nil {
		return nil, err
	}
	var a models.ConnectAttempt
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

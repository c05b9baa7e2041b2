package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/maheshrc27/postflow-studio/internal/repository"
	"github.com/maheshrc27/postflow-studio/internal/service"
)

// SessionSweepJob clears stored sessions whose backend token has expired
// and releases the workspaces that belonged to them.
type SessionSweepJob struct {
	store      repository.Storage
	sessions   repository.SessionRepository
	workspaces *service.Workspaces
	media      service.MediaService
}

func NewSessionSweepJob(
	store repository.Storage,
	sessions repository.SessionRepository,
	workspaces *service.Workspaces,
	media service.MediaService) *SessionSweepJob {
	return &SessionSweepJob{
		store:      store,
		sessions:   sessions,
		workspaces: workspaces,
		media:      media,
	}
}

// Sweep loads every stored session and every open workspace's session.
// Only a Load that reports ErrNoSession marks a workspace dead, so a login
// that lands mid-sweep keeps its workspace.
func (c *SessionSweepJob) Sweep() {
	ctx := context.Background()

	namespaces, err := c.sessions.Namespaces(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	targets := map[string]bool{}
	for _, ns := range namespaces {
		targets[ns] = true
	}
	for _, id := range c.workspaces.SessionIDs() {
		targets[id] = true
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		dead = map[string]bool{}
	)

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for ns := range targets {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(ns string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			// Load clears sessions that are expired or unreadable.
			_, err := c.sessions.Load(ctx, ns)
			switch {
			case err == nil:
			case errors.Is(err, repository.ErrNoSession):
				mu.Lock()
				dead[ns] = true
				mu.Unlock()
			default:
				slog.Info("unable to check session", "namespace", ns, "error", err)
			}
		}(ns)
	}
	wg.Wait()

	dropped := 0
	for id := range dead {
		if ws, ok := c.workspaces.Drop(id); ok {
			c.release(ctx, ws)
			dropped++
		}
	}

	var purged int64
	if p, ok := c.store.(repository.Purger); ok {
		if purged, err = p.Purge(ctx); err != nil {
			slog.Info(err.Error())
		}
	}

	if dropped > 0 || purged > 0 {
		slog.Info("session sweep", "workspaces_dropped", dropped, "keys_purged", purged)
	}
}

func (c *SessionSweepJob) release(ctx context.Context, ws *service.Workspace) {
	staged := ws.Release()
	if c.media != nil {
		c.media.Discard(ctx, staged...)
	}
}

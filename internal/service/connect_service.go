package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	config "github.com/maheshrc27/postflow-studio/configs"
	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/internal/repository"
)

// Launcher opens the authorization URL for the user.
type Launcher interface {
	Launch(ctx context.Context, attempt *models.ConnectAttempt) error
}

// HandoffLauncher leaves opening the window to the caller, which receives
// the URL in the attempt status.
type HandoffLauncher struct{}

func (HandoffLauncher) Launch(context.Context, *models.ConnectAttempt) error { return nil }

// ConnectRunner schedules Watch for a new attempt.
type ConnectRunner interface {
	RunConnectWatch(ctx context.Context, attemptID, token string) error
}

type ConnectService interface {
	Start(ctx context.Context, ws *Workspace, platform models.Platform) (*models.ConnectAttempt, error)
	Status(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error)
	WindowClosed(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error)
	Blocked(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error)
	Watch(ctx context.Context, attemptID, token string) (*models.ConnectAttempt, error)
	UseRunner(r ConnectRunner)
}

// ConnectSettled receives the directory fetched when an attempt is decided
// by looking at the backend, whether or not an account was found. attempt is
// already in its final state.
type ConnectSettled func(ctx context.Context, attempt *models.ConnectAttempt, dir models.Directory)

type connectService struct {
	backend   AccountsBackend
	directory DirectoryService
	attempts  repository.ConnectRepository
	launcher  Launcher
	runner    ConnectRunner
	opts      config.Connect
	clock     Clock
	onSettled ConnectSettled

	mu sync.Mutex
}

func NewConnectService(
	backend AccountsBackend,
	directory DirectoryService,
	attempts repository.ConnectRepository,
	launcher Launcher,
	opts config.Connect,
	clock Clock,
	onSettled ConnectSettled) ConnectService {
	if launcher == nil {
		launcher = HandoffLauncher{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	s := &connectService{
		backend:   backend,
		directory: directory,
		attempts:  attempts,
		launcher:  launcher,
		opts:      opts,
		clock:     clock,
		onSettled: onSettled,
	}
	s.runner = goRunner{s}
	return s
}

func (s *connectService) UseRunner(r ConnectRunner) {
	if r != nil {
		s.runner = r
	}
}

// Start records the accounts already present for the platform family,
// obtains the authorization URL and launches it. Launch failures end the
// attempt as invalid rather than returning an error. If the family listing
// fails the baseline stays unknown and Watch keeps trying to take it.
func (s *connectService) Start(ctx context.Context, ws *Workspace, platform models.Platform) (*models.ConnectAttempt, error) {
	if !platform.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, platform)
	}
	token := ws.Token()

	authURL, err := s.backend.AuthorizationURL(ctx, token, platform)
	if err != nil {
		return nil, err
	}

	id, err := newID()
	if err != nil {
		return nil, err
	}
	dir, errs := s.directory.FetchChecked(ctx, token)
	now := s.clock.now()
	attempt := &models.ConnectAttempt{
		ID:        id,
		SessionID: ws.SessionID,
		Platform:  platform,
		State:     models.ConnectValidating,
		Message:   fmt.Sprintf("Waiting for %s authorization", platform.DisplayName()),
		AuthURL:   authURL,
		StartedAt: now,
		UpdatedAt: now,
	}
	if !errs.Any(platform.Family()...) {
		attempt.Baseline = familySnapshot(dir, platform)
		attempt.BaselineKnown = true
	}
	if err := s.attempts.Save(ctx, attempt); err != nil {
		return nil, err
	}

	if err := s.launcher.Launch(ctx, attempt); err != nil {
		slog.Info("authorization window could not be opened", "platform", platform, "error", err)
		return s.finish(ctx, attempt.ID, models.ConnectInvalid, "Popup blocked. Allow popups for this site and try again.", "")
	}
	if err := s.runner.RunConnectWatch(ctx, attempt.ID, token); err != nil {
		slog.Error("failed to start connect watcher", "attempt", attempt.ID, "error", err)
		return s.finish(ctx, attempt.ID, models.ConnectInvalid, "Could not track the authorization. Try again.", "")
	}
	return attempt, nil
}

func (s *connectService) Status(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error) {
	a, err := s.attempts.GetByID(ctx, attemptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if a.SessionID != sessionID {
		return nil, ErrAttemptNotFound
	}
	return a, nil
}

// WindowClosed records that the authorization window went away. The watcher
// picks it up on its next tick.
func (s *connectService) WindowClosed(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.Status(ctx, sessionID, attemptID)
	if err != nil || a.Done() {
		return a, err
	}
	a.WindowClosed = true
	a.UpdatedAt = s.clock.now()
	if err := s.attempts.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *connectService) Blocked(ctx context.Context, sessionID, attemptID string) (*models.ConnectAttempt, error) {
	a, err := s.Status(ctx, sessionID, attemptID)
	if err != nil || a.Done() {
		return a, err
	}
	return s.finish(ctx, attemptID, models.ConnectInvalid, "Popup blocked. Allow popups for this site and try again.", "")
}

// Watch polls the attempt until it is decided, the timeout passes or ctx is
// cancelled. After the window closes it waits SettleDelay for the backend to
// finish the token exchange and then looks for a new or reconnected account.
// While the window is open the backend is also checked every ProbeEvery ticks.
// An attempt whose baseline was never taken cannot become valid.
func (s *connectService) Watch(ctx context.Context, attemptID, token string) (*models.ConnectAttempt, error) {
	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	tick := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		tick++

		a, err := s.attempts.GetByID(ctx, attemptID)
		if err != nil {
			return nil, err
		}
		if a.Done() {
			return a, nil
		}

		if s.opts.Timeout > 0 && s.clock.now().Sub(a.StartedAt) >= s.opts.Timeout {
			return s.finish(ctx, attemptID, models.ConnectInvalid, "Timed out waiting for authorization.", "")
		}

		if a.WindowClosed {
			if err := sleepCtx(ctx, s.opts.SettleDelay); err != nil {
				return nil, err
			}
			accountID, dir, ok := s.detect(ctx, token, a)
			if ok {
				return s.complete(ctx, a, accountID, dir)
			}
			msg := "Window closed before authorization completed."
			if !a.BaselineKnown {
				msg = "Window closed. Could not confirm the new account; the account list was refreshed."
			}
			done, err := s.finish(ctx, attemptID, models.ConnectInvalid, msg, "")
			if err != nil {
				return nil, err
			}
			s.settled(ctx, done, dir)
			return done, nil
		}

		if !a.BaselineKnown {
			s.takeBaseline(ctx, token, attemptID)
			continue
		}

		if s.opts.ProbeEvery > 0 && tick%s.opts.ProbeEvery == 0 {
			if accountID, dir, ok := s.detect(ctx, token, a); ok {
				return s.complete(ctx, a, accountID, dir)
			}
		}
	}
}

// takeBaseline retries the family snapshot Start could not take. It gives
// up silently once the window has closed or the attempt is decided.
func (s *connectService) takeBaseline(ctx context.Context, token, attemptID string) {
	dir, errs := s.directory.FetchChecked(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil || a.Done() || a.WindowClosed || a.BaselineKnown {
		return
	}
	if errs.Any(a.Platform.Family()...) {
		return
	}
	a.Baseline = familySnapshot(dir, a.Platform)
	a.BaselineKnown = true
	a.UpdatedAt = s.clock.now()
	if err := s.attempts.Save(ctx, a); err != nil {
		slog.Warn("failed to save connect baseline", "attempt", a.ID, "error", err)
	}
}

// detect fetches the directory and looks for a family account that is new
// since the baseline or went from disconnected to connected. Nothing is
// reported while the baseline or the current family listing is incomplete.
func (s *connectService) detect(ctx context.Context, token string, a *models.ConnectAttempt) (string, models.Directory, bool) {
	dir, errs := s.directory.FetchChecked(ctx, token)
	if !a.BaselineKnown || errs.Any(a.Platform.Family()...) {
		return "", dir, false
	}
	for id, connected := range familySnapshot(dir, a.Platform) {
		was, existed := a.Baseline[id]
		if !existed || (!was && connected) {
			return id, dir, true
		}
	}
	return "", dir, false
}

func (s *connectService) complete(ctx context.Context, a *models.ConnectAttempt, accountID string, dir models.Directory) (*models.ConnectAttempt, error) {
	name := a.Platform.DisplayName()
	if acc, ok := dir.Lookup(accountID); ok {
		name = acc.DisplayName()
	}
	done, err := s.finish(ctx, a.ID, models.ConnectValid, fmt.Sprintf("%s connected.", name), accountID)
	if err != nil {
		return nil, err
	}
	s.settled(ctx, done, dir)
	return done, nil
}

func (s *connectService) settled(ctx context.Context, a *models.ConnectAttempt, dir models.Directory) {
	if s.onSettled != nil {
		s.onSettled(ctx, a, dir)
	}
}

// finish moves an attempt to a final state unless another path already did.
func (s *connectService) finish(ctx context.Context, attemptID string, state models.ConnectState, msg, accountID string) (*models.ConnectAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.attempts.GetByID(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if a.Done() {
		return a, nil
	}
	a.State = state
	a.Message = msg
	a.AccountID = accountID
	a.UpdatedAt = s.clock.now()
	if err := s.attempts.Save(ctx, a); err != nil {
		return nil, err
	}
	slog.Info("connect attempt finished", "attempt", a.ID, "platform", a.Platform, "state", a.State)
	return a, nil
}

// familySnapshot maps the directory ids of platform and the platforms that
// share its OAuth login to their connected flag.
func familySnapshot(dir models.Directory, platform models.Platform) map[string]bool {
	family := map[models.Platform]bool{}
	for _, p := range platform.Family() {
		family[p] = true
	}
	snap := map[string]bool{}
	for _, acc := range dir.Accounts {
		if family[acc.Platform] {
			snap[acc.ID] = acc.Connected
		}
	}
	return snap
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// goRunner watches in a goroutine of the current process.
type goRunner struct {
	s *connectService
}

func (r goRunner) RunConnectWatch(_ context.Context, attemptID, token string) error {
	go func() {
		ctx := context.Background()
		if r.s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, r.s.opts.Timeout+r.s.opts.SettleDelay+time.Minute)
			defer cancel()
		}
		if _, err := r.s.Watch(ctx, attemptID, token); err != nil {
			slog.Warn("connect watch stopped", "attempt", attemptID, "error", err)
		}
	}()
	return nil
}

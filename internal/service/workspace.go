package service

import (
	"sync"

	"github.com/maheshrc27/postflow-studio/internal/models"
)

// Workspace is the in-memory state of one signed-in session: its account
// directory, the composer draft and the API key form. All access goes
// through the methods below, which serialize on mu.
type Workspace struct {
	SessionID string

	mu         sync.Mutex
	token      string
	profile    models.Profile
	dir        models.Directory
	loaded     bool
	composer   *Composer
	keys       models.APIKeyForm
	submitting bool
	released   bool
}

// NewWorkspace binds a workspace to the session stored under sessionID.
func NewWorkspace(sessionID string, session *models.Session, clock Clock) *Workspace {
	return &Workspace{
		SessionID: sessionID,
		token:     session.Token,
		profile:   session.Profile(),
		dir:       models.NewDirectory(clock.now()),
		composer:  NewComposer(clock),
	}
}

func (w *Workspace) Token() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.token
}

func (w *Workspace) Profile() models.Profile {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.profile
}

func (w *Workspace) Directory() models.Directory {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir
}

// DirectoryLoaded reports whether the directory was fetched at least once.
func (w *Workspace) DirectoryLoaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.loaded
}

// SetDirectory swaps in a new snapshot and drops composer targets that are
// no longer connected.
func (w *Workspace) SetDirectory(dir models.Directory) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dir = dir
	w.loaded = true
	w.composer.SetDirectory(dir)
}

// WithComposer runs an edit against the draft. Edits are refused with
// ErrSubmitInFlight while a submission holds the draft.
func (w *Workspace) WithComposer(fn func(c *Composer) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return ErrSubmitInFlight
	}
	return fn(w.composer)
}

// withComposer is WithComposer for the submission that owns the draft.
func (w *Workspace) withComposer(fn func(c *Composer) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(w.composer)
}

// ComposerView is readable at any time, including mid-submit.
func (w *Workspace) ComposerView() ComposerView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.composer.View()
}

// Draft returns a copy of the current draft.
func (w *Workspace) Draft() models.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.composer.Draft()
}

// Release empties the draft of a workspace that is going away and returns
// the media to discard. A submission in flight keeps its media; it is
// handed back by endSubmit instead.
func (w *Workspace) Release() []models.MediaItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.released = true
	if w.submitting {
		return nil
	}
	return w.composer.Reset()
}

func (w *Workspace) WithKeys(fn func(f *models.APIKeyForm) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return fn(&w.keys)
}

func (w *Workspace) beginSubmit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.submitting {
		return ErrSubmitInFlight
	}
	w.submitting = true
	return nil
}

// endSubmit returns the staged media of a workspace released while the
// submission ran.
func (w *Workspace) endSubmit() []models.MediaItem {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.submitting = false
	if w.released {
		return w.composer.Reset()
	}
	return nil
}

// Workspaces is the registry of live workspaces keyed by session id.
type Workspaces struct {
	mu    sync.RWMutex
	items map[string]*Workspace
	clock Clock
}

func NewWorkspaces(clock Clock) *Workspaces {
	return &Workspaces{items: map[string]*Workspace{}, clock: clock}
}

func (r *Workspaces) Get(sessionID string) (*Workspace, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[sessionID]
	return w, ok
}

// Open returns the workspace for session, creating it when needed. created
// is true when the caller should populate the directory.
func (r *Workspaces) Open(sessionID string, session *models.Session) (w *Workspace, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.items[sessionID]; ok {
		w.mu.Lock()
		w.token = session.Token
		w.profile = session.Profile()
		w.mu.Unlock()
		return w, false
	}
	w = NewWorkspace(sessionID, session, r.clock)
	r.items[sessionID] = w
	return w, true
}

// Drop forgets the workspace and returns it so staged media can be released.
func (r *Workspaces) Drop(sessionID string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.items[sessionID]
	delete(r.items, sessionID)
	return w, ok
}

func (r *Workspaces) SessionIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	return ids
}

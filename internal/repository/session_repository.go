package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postflow-studio/internal/models"
	"github.com/maheshrc27/postflow-studio/pkg/utils"
)

const sessionPrefix = "session:"

var (
	ErrNoSession      = errors.New("no active session")
	ErrSessionCorrupt = fmt.Errorf("%w: stored session was unreadable and has been cleared", ErrNoSession)
)

// SessionRepository persists an authenticated session as two keys, the
// bearer token and the user profile. Both must be present and readable for
// the session to count.
type SessionRepository interface {
	Load(ctx context.Context, ns string) (*models.Session, error)
	Save(ctx context.Context, ns string, s *models.Session) error
	Clear(ctx context.Context, ns string) error
	Namespaces(ctx context.Context) ([]string, error)
}

type sessionRepository struct {
	store Storage
	key   []byte
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionRepository encrypts tokens at rest when secret is a valid AES
// key length. A zero ttl keeps sessions until they are cleared.
func NewSessionRepository(store Storage, secret string, ttl time.Duration) SessionRepository {
	r := &sessionRepository{store: store, ttl: ttl, now: time.Now}
	if utils.ValidKey([]byte(secret)) {
		r.key = []byte(secret)
	} else if secret != "" {
		slog.Warn("SECRET_KEY is not 16, 24 or 32 bytes; session tokens are stored unencrypted")
	}
	return r
}

func tokenKey(ns string) string { return sessionPrefix + ns + ":token" }
func userKey(ns string) string  { return sessionPrefix + ns + ":user" }

func (r *sessionRepository) Load(ctx context.Context, ns string) (*models.Session, error) {
	rawToken, tokenErr := r.store.Get(ctx, tokenKey(ns))
	rawUser, userErr := r.store.Get(ctx, userKey(ns))

	for _, err := range []error{tokenErr, userErr} {
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if tokenErr != nil && userErr != nil {
		return nil, ErrNoSession
	}
	if tokenErr != nil || userErr != nil {
		return nil, r.discard(ctx, ns, "half-present session")
	}

	token, err := r.openToken(rawToken)
	if err != nil || token == "" {
		return nil, r.discard(ctx, ns, "unreadable token")
	}
	if exp, ok := utils.TokenExpiry(token); ok && !r.now().Before(exp) {
		return nil, r.discard(ctx, ns, "expired token")
	}

	var profile models.Profile
	if err := json.Unmarshal(rawUser, &profile); err != nil {
		return nil, r.discard(ctx, ns, "unreadable profile")
	}

	return models.SessionFromProfile(profile, token), nil
}

func (r *sessionRepository) Save(ctx context.Context, ns string, s *models.Session) error {
	if s == nil || s.Token == "" {
		return errors.New("session has no token")
	}
	sealed, err := r.sealToken(s.Token)
	if err != nil {
		return err
	}
	user, err := json.Marshal(s.Profile())
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, tokenKey(ns), []byte(sealed), r.ttl); err != nil {
		slog.Info(err.Error())
		return err
	}
	if err := r.store.Set(ctx, userKey(ns), user, r.ttl); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *sessionRepository) Clear(ctx context.Context, ns string) error {
	return r.store.Delete(ctx, tokenKey(ns), userKey(ns))
}

// Namespaces lists every namespace holding at least one session key.
func (r *sessionRepository) Namespaces(ctx context.Context) ([]string, error) {
	keys, err := r.store.Keys(ctx, sessionPrefix)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, k := range keys {
		rest := strings.TrimPrefix(k, sessionPrefix)
		i := strings.LastIndex(rest, ":")
		if i <= 0 {
			continue
		}
		ns := rest[:i]
		if !seen[ns] {
			seen[ns] = true
			out = append(out, ns)
		}
	}
	return out, nil
}

func (r *sessionRepository) discard(ctx context.Context, ns, reason string) error {
	slog.Warn("clearing stored session", "namespace", ns, "reason", reason)
	if err := r.Clear(ctx, ns); err != nil {
		return err
	}
	return ErrSessionCorrupt
}

func (r *sessionRepository) sealToken(token string) (string, error) {
	if r.key == nil {
		return token, nil
	}
	return utils.Encrypt([]byte(token), r.key)
}

func (r *sessionRepository) openToken(raw []byte) (string, error) {
	if r.key == nil {
		return string(raw), nil
	}
	return utils.Decrypt(string(raw), r.key)
}

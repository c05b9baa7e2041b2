package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/lib/pq"
)

const createStorageTable = `
	CREATE TABLE IF NOT EXISTS client_storage (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		expires_at TIMESTAMPTZ
	)
`

type postgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, uri string) (Storage, error) {
	db, err := sql.Open("postgres", uri)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		slog.Info(err.Error())
		return nil, err
	}
	s, err := newPostgresStorage(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func newPostgresStorage(ctx context.Context, db *sql.DB) (*postgresStorage, error) {
	if _, err := db.ExecContext(ctx, createStorageTable); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &postgresStorage{db: db}, nil
}

func (r *postgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM client_storage
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())
	`
	var value []byte
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}
	return value, nil
}

func (r *postgresStorage) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	query := `
		INSERT INTO client_storage (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`
	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, query, key, value, expiresAt); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM client_storage WHERE key = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postgresStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `
		SELECT key
		FROM client_storage
		WHERE key LIKE $1 ESCAPE '\' AND (expires_at IS NULL OR expires_at > NOW())
		ORDER BY key
	`
	rows, err := r.db.QueryContext(ctx, query, likePrefix(prefix))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Purge drops expired rows. Reads already ignore them.
func (r *postgresStorage) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM client_storage WHERE expires_at IS NOT NULL AND expires_at <= NOW()`)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return res.RowsAffected()
}

func (r *postgresStorage) Close() error {
	return r.db.Close()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

package sessionstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"promptagent/internal/domain"
)

// SQLite stores sessions in a single-file database for single-node deployments.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	tier TEXT NOT NULL DEFAULT 'free',
	usage_count INTEGER NOT NULL DEFAULT 0,
	daily_flag_date TEXT NOT NULL DEFAULT '',
	single_use TEXT NOT NULL DEFAULT '{}',
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
`

const (
	sqliteSelect = `SELECT id, tier, usage_count, daily_flag_date, single_use, updated_at FROM sessions WHERE id = ?`
	sqliteUpsert = `
	INSERT INTO sessions (id, tier, usage_count, daily_flag_date, single_use, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		tier = excluded.tier,
		usage_count = excluded.usage_count,
		daily_flag_date = excluded.daily_flag_date,
		single_use = excluded.single_use,
		updated_at = excluded.updated_at`
	sqliteDelete = `DELETE FROM sessions WHERE id = ?`
)

// NewSQLite opens (creating if needed) the database at path.
func NewSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// A single connection serializes writers within the process.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, id string) (*domain.Session, error) {
	return scanSQLite(s.db.QueryRowContext(ctx, sqliteSelect, id))
}

func (s *SQLite) Put(ctx context.Context, sess *domain.Session) error {
	return upsertSQLite(ctx, s.db, sess)
}

func (s *SQLite) Clear(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, sqliteDelete, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Update runs fn inside a transaction so the read and the write see the same row.
func (s *SQLite) Update(ctx context.Context, id string, fn func(*domain.Session) (*domain.Session, error)) (*domain.Session, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	cur, err := scanSQLite(tx.QueryRowContext(ctx, sqliteSelect, id))
	if errors.Is(err, domain.ErrNotFound) {
		cur = domain.NewSession(id)
	} else if err != nil {
		return nil, err
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	next.ID = id
	if err := upsertSQLite(ctx, tx, next); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

type sqliteExecer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertSQLite(ctx context.Context, db sqliteExecer, sess *domain.Session) error {
	if sess == nil || sess.ID == "" {
		return errMissingID
	}
	flags, err := encodeSingleUse(sess.SingleUse)
	if err != nil {
		return err
	}
	updated := sess.UpdatedAt
	if updated.IsZero() {
		updated = time.Now()
	}
	if _, err := db.ExecContext(ctx, sqliteUpsert,
		sess.ID, string(sess.Tier), sess.UsageCount, sess.DailyFlagDate, string(flags), updated.UnixMilli(),
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func scanSQLite(row *sql.Row) (*domain.Session, error) {
	var (
		sess    domain.Session
		tier    string
		flags   string
		updated int64
	)
	err := row.Scan(&sess.ID, &tier, &sess.UsageCount, &sess.DailyFlagDate, &flags, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan session: %w", err)
	}
	sess.Tier = domain.Tier(tier)
	sess.UpdatedAt = time.UnixMilli(updated).UTC()
	single, err := decodeSingleUse([]byte(flags))
	if err != nil {
		return nil, err
	}
	sess.SingleUse = single
	return &sess, nil
}

var (
	_ domain.SessionRepository = (*SQLite)(nil)
	_ domain.SessionUpdater    = (*SQLite)(nil)
)

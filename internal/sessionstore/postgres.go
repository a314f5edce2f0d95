package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"promptagent/internal/domain"
	"promptagent/internal/infra"
	"promptagent/internal/sqlinline"
)

// Postgres stores sessions in the sessions table through a marker-checked
// SQL executor.
type Postgres struct {
	sql infra.SQLExecutor
	// begin is nil for stores built on a bare executor; Update then runs
	// without row locks.
	begin func(ctx context.Context) (pgx.Tx, infra.SQLExecutor, error)
}

func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

// NewPostgresPool runs every statement through a SQLRunner and gives Update
// a row-locking transaction.
func NewPostgresPool(pool *pgxpool.Pool, logger zerolog.Logger) *Postgres {
	return &Postgres{
		sql: infra.NewSQLRunner(pool, logger),
		begin: func(ctx context.Context) (pgx.Tx, infra.SQLExecutor, error) {
			tx, err := pool.Begin(ctx)
			if err != nil {
				return nil, nil, err
			}
			return tx, infra.NewSQLRunner(tx, logger), nil
		},
	}
}

// EnsureSchema creates the sessions table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QCreateSessionsTable); err != nil {
		return fmt.Errorf("create sessions table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*domain.Session, error) {
	return scanSession(p.sql.QueryRow(ctx, sqlinline.QSelectSession, id))
}

func (p *Postgres) Put(ctx context.Context, s *domain.Session) error {
	return putSession(ctx, p.sql, s)
}

// Update locks the row with SELECT ... FOR UPDATE so replicas sharing the
// database serialize on the same session.
func (p *Postgres) Update(ctx context.Context, id string, fn func(*domain.Session) (*domain.Session, error)) (*domain.Session, error) {
	if p.begin == nil {
		return updateWith(ctx, p.sql, sqlinline.QSelectSession, id, fn)
	}
	tx, exec, err := p.begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin session update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	next, err := updateWith(ctx, exec, sqlinline.QSelectSessionForUpdate, id, fn)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit session update: %w", err)
	}
	return next, nil
}

func updateWith(ctx context.Context, exec infra.SQLExecutor, selectQuery, id string, fn func(*domain.Session) (*domain.Session, error)) (*domain.Session, error) {
	cur, err := scanSession(exec.QueryRow(ctx, selectQuery, id))
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
	if err := putSession(ctx, exec, next); err != nil {
		return nil, err
	}
	return next, nil
}

func putSession(ctx context.Context, exec infra.SQLExecutor, s *domain.Session) error {
	if s == nil || s.ID == "" {
		return errMissingID
	}
	flags, err := encodeSingleUse(s.SingleUse)
	if err != nil {
		return err
	}
	updated := s.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	if _, err := exec.Exec(ctx, sqlinline.QUpsertSession,
		s.ID,
		string(s.Tier),
		s.UsageCount,
		s.DailyFlagDate,
		flags,
		updated,
	); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context, id string) error {
	if _, err := p.sql.Exec(ctx, sqlinline.QDeleteSession, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		s     domain.Session
		tier  string
		flags []byte
	)
	if err := row.Scan(&s.ID, &tier, &s.UsageCount, &s.DailyFlagDate, &flags, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	s.Tier = domain.Tier(tier)
	single, err := decodeSingleUse(flags)
	if err != nil {
		return nil, err
	}
	s.SingleUse = single
	return &s, nil
}

var (
	_ domain.SessionRepository = (*Postgres)(nil)
	_ domain.SessionUpdater    = (*Postgres)(nil)
)

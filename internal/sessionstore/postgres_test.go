package sessionstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"promptagent/internal/domain"
	"promptagent/internal/infra"
	"promptagent/internal/sqlinline"
)

type simpleRow struct {
	scan func(dest ...any) error
}

func (r simpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

type stubSQL struct {
	execQueries []string
	execArgs    [][]any
	row         simpleRow
	execErr     error
}

func (s *stubSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	s.execQueries = append(s.execQueries, query)
	s.execArgs = append(s.execArgs, args)
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubSQL) QueryRow(context.Context, string, ...any) pgx.Row {
	return s.row
}

func (s *stubSQL) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func TestPostgresGetScansRow(t *testing.T) {
	updated := time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)
	sql := &stubSQL{row: simpleRow{scan: func(dest ...any) error {
		*dest[0].(*string) = "s1"
		*dest[1].(*string) = "pro"
		*dest[2].(*int) = 0
		*dest[3].(*string) = ""
		*dest[4].(*[]byte) = []byte(`{}`)
		*dest[5].(*time.Time) = updated
		return nil
	}}}
	s, err := NewPostgres(sql).Get(context.Background(), "s1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if s.Tier != domain.TierPro {
		t.Fatalf("Tier = %q, want %q", s.Tier, domain.TierPro)
	}
	if s.SingleUse != nil {
		t.Fatalf("SingleUse = %#v, want nil", s.SingleUse)
	}
	if !s.UpdatedAt.Equal(updated) {
		t.Fatalf("UpdatedAt = %v, want %v", s.UpdatedAt, updated)
	}
}

func TestPostgresGetMissing(t *testing.T) {
	_, err := NewPostgres(&stubSQL{}).Get(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPostgresPutSendsAllColumns(t *testing.T) {
	sql := &stubSQL{}
	store := NewPostgres(sql)
	if err := store.Put(context.Background(), sampleSession("s1")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if len(sql.execQueries) != 1 || sql.execQueries[0] != sqlinline.QUpsertSession {
		t.Fatalf("queries = %q", sql.execQueries)
	}
	args := sql.execArgs[0]
	if len(args) != 6 {
		t.Fatalf("args = %d, want 6", len(args))
	}
	if args[1] != "free" || args[2] != 3 || args[3] != "2026-10-14" {
		t.Fatalf("args = %#v", args)
	}
	if flags := string(args[4].([]byte)); !strings.Contains(flags, `"client_reply":true`) {
		t.Fatalf("single_use = %s", flags)
	}
}

func TestPostgresErrorsAreWrapped(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewPostgres(&stubSQL{execErr: boom})
	if err := store.Put(context.Background(), sampleSession("s1")); !errors.Is(err, boom) {
		t.Fatalf("Put err = %v, want wrapped %v", err, boom)
	}
	if err := store.Clear(context.Background(), "s1"); !errors.Is(err, boom) {
		t.Fatalf("Clear err = %v, want wrapped %v", err, boom)
	}
	if err := store.EnsureSchema(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("EnsureSchema err = %v, want wrapped %v", err, boom)
	}
	if err := store.Put(context.Background(), nil); err == nil {
		t.Fatal("Put(nil) returned nil error")
	}
}

func TestPostgresUpdateWithoutTransactions(t *testing.T) {
	sql := &stubSQL{}
	next, err := NewPostgres(sql).Update(context.Background(), "fresh", func(cur *domain.Session) (*domain.Session, error) {
		cur.UsageCount++
		return cur, nil
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if next.ID != "fresh" || next.UsageCount != 1 {
		t.Fatalf("next = %+v", next)
	}
	if len(sql.execArgs) != 1 || sql.execArgs[0][2] != 1 {
		t.Fatalf("upsert args = %#v", sql.execArgs)
	}
}

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type recordingSQL struct {
	stubSQL
	queried []string
}

func (s *recordingSQL) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	s.queried = append(s.queried, query)
	return s.stubSQL.QueryRow(ctx, query, args...)
}

func TestPostgresUpdateLocksRowInTransaction(t *testing.T) {
	tx := &fakeTx{}
	inTx := &recordingSQL{}
	store := &Postgres{
		sql: &stubSQL{},
		begin: func(context.Context) (pgx.Tx, infra.SQLExecutor, error) {
			return tx, inTx, nil
		},
	}
	if _, err := store.Update(context.Background(), "s1", func(cur *domain.Session) (*domain.Session, error) {
		return cur, nil
	}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if len(inTx.queried) != 1 || inTx.queried[0] != sqlinline.QSelectSessionForUpdate {
		t.Fatalf("queried = %q, want the FOR UPDATE select", inTx.queried)
	}
	if len(inTx.execQueries) != 1 {
		t.Fatalf("exec in tx = %d, want 1", len(inTx.execQueries))
	}
	if !tx.committed || tx.rolledBack {
		t.Fatalf("tx committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
}

func TestPostgresUpdateRollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	inTx := &recordingSQL{}
	store := &Postgres{
		sql: &stubSQL{},
		begin: func(context.Context) (pgx.Tx, infra.SQLExecutor, error) {
			return tx, inTx, nil
		},
	}
	boom := errors.New("denied")
	_, err := store.Update(context.Background(), "s1", func(*domain.Session) (*domain.Session, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("tx committed=%v rolledBack=%v", tx.committed, tx.rolledBack)
	}
	if len(inTx.execQueries) != 0 {
		t.Fatalf("exec in tx = %d, want 0", len(inTx.execQueries))
	}
}

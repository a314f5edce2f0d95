package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptagent/internal/domain"
	"promptagent/internal/infra"
)

func sampleSession(id string) *domain.Session {
	return &domain.Session{
		ID:            id,
		Tier:          domain.TierFree,
		UsageCount:    3,
		DailyFlagDate: "2026-10-14",
		SingleUse:     map[domain.FeatureKey]bool{domain.FeatureClientReply: true},
		UpdatedAt:     time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	}
}

type repoUnderTest interface {
	domain.SessionRepository
	domain.SessionUpdater
}

func exerciseRepository(t *testing.T, repo repoUnderTest) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)

	want := sampleSession("s1")
	require.NoError(t, repo.Put(ctx, want))
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	got.UsageCount = 99
	again, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.UsageCount, "stored state must not alias returned sessions")

	next, err := repo.Update(ctx, "s1", func(cur *domain.Session) (*domain.Session, error) {
		cur.UsageCount++
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 4, next.UsageCount)

	created, err := repo.Update(ctx, "fresh", func(cur *domain.Session) (*domain.Session, error) {
		assert.Equal(t, domain.TierFree, cur.Tier)
		cur.UsageCount = 1
		cur.UpdatedAt = time.Unix(0, 0).UTC()
		return cur, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ID)

	boom := errors.New("boom")
	_, err = repo.Update(ctx, "s1", func(cur *domain.Session) (*domain.Session, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)
	current, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, current.UsageCount, "failed update must not write")

	require.NoError(t, repo.Clear(ctx, "s1"))
	_, err = repo.Get(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.Error(t, repo.Put(ctx, &domain.Session{}))
}

func TestMemoryRepository(t *testing.T) {
	exerciseRepository(t, NewMemory())
}

func TestSQLiteRepository(t *testing.T) {
	store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "nested", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	exerciseRepository(t, store)
}

// TestRedisRepository runs against a live server when PROMPTAGENT_TEST_REDIS_URL is set.
func TestRedisRepository(t *testing.T) {
	url := os.Getenv("PROMPTAGENT_TEST_REDIS_URL")
	if url == "" {
		t.Skip("PROMPTAGENT_TEST_REDIS_URL not set")
	}
	store, err := NewRedis(context.Background(), url, time.Minute)
	require.NoError(t, err)
	t.Cleanup(func() {
		for _, id := range []string{"s1", "fresh"} {
			_ = store.Clear(context.Background(), id)
		}
		_ = store.Close()
	})
	exerciseRepository(t, store)
}

func TestSQLiteUpdateIsSerialized(t *testing.T) {
	store, err := NewSQLite(context.Background(), filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(context.Background(), "shared", func(cur *domain.Session) (*domain.Session, error) {
				cur.UsageCount++
				cur.UpdatedAt = time.Now()
				return cur, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.Get(context.Background(), "shared")
	require.NoError(t, err)
	assert.Equal(t, workers, got.UsageCount)
}

func TestCodecRoundTripKeepsFlags(t *testing.T) {
	raw, err := encodeSession(sampleSession("s1"))
	require.NoError(t, err)
	got, err := decodeSession(raw)
	require.NoError(t, err)
	assert.True(t, got.UsedSingle(domain.FeatureClientReply))
	assert.Equal(t, "2026-10-14", got.DailyFlagDate)

	legacy, err := decodeSession([]byte(`{"id":"old","usage_count":2}`))
	require.NoError(t, err)
	assert.Equal(t, domain.TierFree, legacy.Tier, "missing tier decodes as free")

	_, err = encodeSession(&domain.Session{})
	require.Error(t, err)
	_, err = decodeSession([]byte(`{`))
	require.Error(t, err)
}

func TestOpenMemoryAndUnknown(t *testing.T) {
	store, closeFn, err := Open(context.Background(), &infra.Config{SessionStore: infra.StoreMemory}, infra.Logger{})
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &Memory{}, store)

	_, closeFn, err = Open(context.Background(), &infra.Config{SessionStore: "etcd"}, infra.Logger{})
	require.Error(t, err)
	closeFn()
}

func TestOpenSQLite(t *testing.T) {
	cfg := &infra.Config{SessionStore: infra.StoreSQLite, SQLitePath: filepath.Join(t.TempDir(), "s.db")}
	store, closeFn, err := Open(context.Background(), cfg, infra.Logger{})
	require.NoError(t, err)
	defer closeFn()
	require.NoError(t, store.Put(context.Background(), sampleSession(fmt.Sprintf("id-%d", 1))))
}

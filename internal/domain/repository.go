package domain

import "context"

// SessionRepository persists session state by session id.
// Get returns ErrNotFound when no state exists for id.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Clear(ctx context.Context, id string) error
}

// SessionUpdater is implemented by stores that can apply a read-modify-write
// atomically across processes. fn receives the stored session, or a fresh one
// when none exists, and returns the state to persist.
type SessionUpdater interface {
	Update(ctx context.Context, id string, fn func(*Session) (*Session, error)) (*Session, error)
}

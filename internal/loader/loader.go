// Package loader batches user lookups made while rendering one request.
package loader

import (
	"context"
	"sync"

	"github.com/alpost/backend/internal/models"
)

// FetchFunc loads users by id. Missing ids are simply absent from the result.
type FetchFunc func(ctx context.Context, ids []int64) ([]models.User, error)

// Thunk resolves one Load call. Calling it flushes the pending batch if
// it has not been flushed yet.
type Thunk func() (*models.User, error)

type result struct {
	user *models.User
	err  error
}

// UserLoader collects ids through Load and fetches them in a single query
// the first time any returned thunk is called. Results are kept for the
// lifetime of the loader, so a loader must not outlive its request.
type UserLoader struct {
	ctx   context.Context
	fetch FetchFunc

	mu      sync.Mutex
	pending []int64
	queued  map[int64]bool
	cache   map[int64]result
	batches int
}

// NewUserLoader creates a loader whose fetches run with ctx.
func NewUserLoader(ctx context.Context, fetch FetchFunc) *UserLoader {
	return &UserLoader{
		ctx:    ctx,
		fetch:  fetch,
		queued: map[int64]bool{},
		cache:  map[int64]result{},
	}
}

// Load registers id for the next batch and returns its thunk.
func (l *UserLoader) Load(id int64) Thunk {
	l.mu.Lock()
	if _, done := l.cache[id]; !done && !l.queued[id] {
		l.queued[id] = true
		l.pending = append(l.pending, id)
	}
	l.mu.Unlock()

	return func() (*models.User, error) {
		l.mu.Lock()
		defer l.mu.Unlock()

		if _, done := l.cache[id]; !done {
			l.flush()
		}
		r := l.cache[id]
		return r.user, r.err
	}
}

// LoadMany loads every id and resolves them together.
func (l *UserLoader) LoadMany(ids []int64) (map[int64]*models.User, error) {
	thunks := make(map[int64]Thunk, len(ids))
	for _, id := range ids {
		thunks[id] = l.Load(id)
	}

	users := make(map[int64]*models.User, len(ids))
	for id, thunk := range thunks {
		user, err := thunk()
		if err != nil {
			return nil, err
		}
		users[id] = user
	}
	return users, nil
}

// Batches reports how many fetches the loader has issued.
func (l *UserLoader) Batches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batches
}

// flush fetches every pending id. Caller holds l.mu.
func (l *UserLoader) flush() {
	ids := l.pending
	l.pending = nil
	l.queued = map[int64]bool{}
	if len(ids) == 0 {
		return
	}

	l.batches++
	users, err := l.fetch(l.ctx, ids)
	if err != nil {
		for _, id := range ids {
			l.cache[id] = result{err: err}
		}
		return
	}

	for _, id := range ids {
		l.cache[id] = result{}
	}
	for i := range users {
		u := users[i]
		l.cache[u.ID] = result{user: &u}
	}
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying l.
func NewContext(ctx context.Context, l *UserLoader) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the loader stored in ctx, or nil.
func FromContext(ctx context.Context) *UserLoader {
	l, _ := ctx.Value(ctxKey{}).(*UserLoader)
	return l
}

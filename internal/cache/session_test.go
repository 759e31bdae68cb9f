package cache

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/alpost/backend/pkg/config"
)

var testRedisURL string

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := redis.Run(ctx, "redis:7-alpine")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start redis container: %v\n", err)
		os.Exit(1)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get redis endpoint: %v\n", err)
		os.Exit(1)
	}
	testRedisURL = "redis://" + endpoint

	code := m.Run()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate redis container: %v\n", err)
	}
	os.Exit(code)
}

func setupCache(t *testing.T) *Cache {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	c, err := New(&config.RedisConfig{URL: testRedisURL})
	require.NoError(t, err)
	require.NoError(t, c.client.FlushAll(context.Background()).Err())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestSessionStore(c *Cache) *SessionStore {
	return NewSessionStore(c, &config.SessionConfig{
		CookieName: "qid",
		Secret:     "0123456789abcdef0123456789abcdef",
		MaxAge:     time.Hour,
	}, false)
}

func TestCache_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)

	_, err := c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)

	assert.NoError(t, c.Health(ctx))
}

func TestSessionStore_RoundTrip(t *testing.T) {
	c := setupCache(t)
	store := newTestSessionStore(c)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	session, err := store.Get(req, "qid")
	require.NoError(t, err)
	assert.True(t, session.IsNew)
	assert.Zero(t, UserID(session))

	SetUserID(session, 42)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, session))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "qid", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotContains(t, cookies[0].Value, session.ID)

	next := httptest.NewRequest(http.MethodPost, "/", nil)
	next.AddCookie(cookies[0])
	loaded, err := store.Get(next, "qid")
	require.NoError(t, err)
	assert.False(t, loaded.IsNew)
	assert.Equal(t, session.ID, loaded.ID)
	assert.Equal(t, int64(42), UserID(loaded))

	Destroy(loaded)
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(next, rec, loaded))
	_, err = c.Get(context.Background(), sessionPrefix+session.ID)
	assert.ErrorIs(t, err, ErrMiss)

	again := httptest.NewRequest(http.MethodPost, "/", nil)
	again.AddCookie(cookies[0])
	gone, err := store.Get(again, "qid")
	require.NoError(t, err)
	assert.True(t, gone.IsNew)
	assert.Zero(t, UserID(gone))
}

func TestSessionStore_RejectsForgedCookie(t *testing.T) {
	c := setupCache(t)
	store := newTestSessionStore(c)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.AddCookie(&http.Cookie{Name: "qid", Value: "not-a-signed-id"})
	session, err := store.Get(req, "qid")
	assert.Error(t, err)
	assert.True(t, session.IsNew)
	assert.Empty(t, session.ID)
}

func TestSessionStore_RegenerateIssuesNewID(t *testing.T) {
	ctx := context.Background()
	c := setupCache(t)
	store := newTestSessionStore(c)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	anon, err := store.Get(req, "qid")
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	require.NoError(t, store.Save(req, rec, anon))
	planted := anon.ID
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodPost, "/", nil)
	next.AddCookie(cookies[0])
	session, err := store.Get(next, "qid")
	require.NoError(t, err)
	require.Equal(t, planted, session.ID)

	require.NoError(t, Regenerate(next, session))
	SetUserID(session, 7)
	rec = httptest.NewRecorder()
	require.NoError(t, store.Save(next, rec, session))

	assert.NotEmpty(t, session.ID)
	assert.NotEqual(t, planted, session.ID)
	_, err = c.Get(ctx, sessionPrefix+planted)
	assert.ErrorIs(t, err, ErrMiss)

	old := httptest.NewRequest(http.MethodPost, "/", nil)
	old.AddCookie(cookies[0])
	stale, err := store.Get(old, "qid")
	require.NoError(t, err)
	assert.True(t, stale.IsNew)
	assert.Zero(t, UserID(stale))
}

func TestNewSessionStore_SameSite(t *testing.T) {
	cfg := &config.SessionConfig{CookieName: "qid", Secret: "0123456789abcdef", MaxAge: time.Hour}

	local := NewSessionStore(nil, cfg, false)
	assert.Equal(t, http.SameSiteLaxMode, local.Options.SameSite)
	assert.False(t, local.Options.Secure)

	prod := NewSessionStore(nil, cfg, true)
	assert.Equal(t, http.SameSiteNoneMode, prod.Options.SameSite)
	assert.True(t, prod.Options.Secure)
}

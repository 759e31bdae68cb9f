package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/alpost/backend/pkg/config"
)

const (
	sessionPrefix = "sess:"
	userIDKey     = "userId"
)

// SessionStore is a gorilla sessions.Store keeping session values in Redis.
// The cookie carries only the signed session id.
type SessionStore struct {
	cache      *Cache
	codecs     []securecookie.Codec
	serializer securecookie.GobEncoder
	Options    *sessions.Options
}

var _ sessions.Store = (*SessionStore)(nil)

// NewSessionStore creates a session store backed by c.
func NewSessionStore(c *Cache, cfg *config.SessionConfig, secure bool) *SessionStore {
	return &SessionStore{
		cache:  c,
		codecs: securecookie.CodecsFromPairs([]byte(cfg.Secret)),
		Options: &sessions.Options{
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   int(cfg.MaxAge.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite(secure),
		},
	}
}

// sameSite lets a frontend on another origin send the cookie with
// credentialed requests. Browsers only accept None on secure cookies.
func sameSite(secure bool) http.SameSite {
	if secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// Get returns the named session, cached per request.
func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie, or a fresh one when
// the cookie is absent, forged or expired.
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, cookie.Value, &session.ID, s.codecs...); err != nil {
		session.ID = ""
		return session, err
	}

	found, err := s.load(r.Context(), session)
	if err != nil {
		return session, err
	}
	if !found {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session and writes the cookie. A session with a
// non-positive MaxAge is deleted from Redis and the cookie is cleared.
func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	ctx := r.Context()

	if session.Options.MaxAge <= 0 {
		if session.ID != "" {
			if err := s.cache.Delete(ctx, sessionPrefix+session.ID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	data, err := s.serializer.Serialize(session.Values)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	ttl := time.Duration(session.Options.MaxAge) * time.Second
	if err := s.cache.Set(ctx, sessionPrefix+session.ID, data, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return err
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func (s *SessionStore) load(ctx context.Context, session *sessions.Session) (bool, error) {
	data, err := s.cache.Get(ctx, sessionPrefix+session.ID)
	if errors.Is(err, ErrMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if err := s.serializer.Deserialize(data, &session.Values); err != nil {
		return false, fmt.Errorf("failed to decode session: %w", err)
	}
	return true, nil
}

// UserID returns the logged-in user of session, or 0.
func UserID(session *sessions.Session) int64 {
	if session == nil {
		return 0
	}
	id, _ := session.Values[userIDKey].(int64)
	return id
}

// SetUserID marks session as logged in as userID.
func SetUserID(session *sessions.Session, userID int64) {
	session.Values[userIDKey] = userID
}

// Regenerate drops the stored state behind session's current id and makes
// the next Save issue a new one. Values are kept.
func Regenerate(r *http.Request, session *sessions.Session) error {
	if session.ID != "" {
		if store, ok := session.Store().(*SessionStore); ok {
			if err := store.cache.Delete(r.Context(), sessionPrefix+session.ID); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
	}
	session.ID = ""
	session.IsNew = true
	return nil
}

// Destroy expires session so the next Save removes it.
func Destroy(session *sessions.Session) {
	session.Options.MaxAge = -1
	for k := range session.Values {
		delete(session.Values, k)
	}
}

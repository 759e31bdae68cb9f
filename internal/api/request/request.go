// Package request holds the per-request state shared by JSON-RPC method
// handlers: the session user, the identity loader and parameter decoding.
package request

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/alpost/backend/internal/cache"
	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/internal/loader"
	"github.com/alpost/backend/pkg/logging"
)

const (
	sessionKey      = "session"
	requestIDHeader = "X-Request-ID"
)

// Logger assigns a request id, stores a request-scoped logger on the
// request context and logs the request once it completes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		logger := logging.WithRequestID(id)
		c.Request = c.Request.WithContext(logging.NewContext(c.Request.Context(), logger))

		start := time.Now()
		c.Next()

		logger.Info("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Sessions loads the named session for every request. A missing or
// unreadable cookie yields an anonymous session.
func Sessions(store sessions.Store, name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, name)
		if err != nil {
			logging.FromContext(c.Request.Context()).Debug("Discarding unreadable session", zap.Error(err))
		}
		c.Set(sessionKey, session)
		c.Next()
	}
}

// Loader attaches a fresh identity loader to every request.
func Loader(fetch loader.FetchFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		c.Request = c.Request.WithContext(loader.NewContext(ctx, loader.NewUserLoader(ctx, fetch)))
		c.Next()
	}
}

func session(c *gin.Context) *sessions.Session {
	s, _ := c.Get(sessionKey)
	session, _ := s.(*sessions.Session)
	return session
}

// UserID returns the session user, or 0 when anonymous.
func UserID(c *gin.Context) int64 {
	return cache.UserID(session(c))
}

// Viewer returns the session user as an optional id.
func Viewer(c *gin.Context) *int64 {
	if id := UserID(c); id > 0 {
		return &id
	}
	return nil
}

// RequireUser returns the session user or forum.ErrUnauthenticated.
func RequireUser(c *gin.Context) (int64, error) {
	if id := UserID(c); id > 0 {
		return id, nil
	}
	return 0, forum.ErrUnauthenticated
}

// Login binds userID to the session and writes the cookie.
func Login(c *gin.Context, userID int64) error {
	s := session(c)
	if s == nil {
		return forum.ErrUnauthenticated
	}
	if err := cache.Regenerate(c.Request, s); err != nil {
		return err
	}
	cache.SetUserID(s, userID)
	return s.Save(c.Request, c.Writer)
}

// Logout destroys the session and clears the cookie.
func Logout(c *gin.Context) error {
	s := session(c)
	if s == nil {
		return nil
	}
	cache.Destroy(s)
	return s.Save(c.Request, c.Writer)
}

// UserLoader returns the request's identity loader.
func UserLoader(c *gin.Context) *loader.UserLoader {
	return loader.FromContext(c.Request.Context())
}

// Decode unmarshals object params into dst. Empty params leave dst
// untouched.
func Decode(params json.RawMessage, dst interface{}) error {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return &forum.InputError{Message: "invalid parameters format"}
	}
	return nil
}

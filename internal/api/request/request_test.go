package request

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/pkg/logging"
)

func TestDecode(t *testing.T) {
	var p struct {
		ID int64 `json:"id"`
	}

	require.NoError(t, Decode(nil, &p))
	require.NoError(t, Decode(json.RawMessage(" null "), &p))
	assert.Zero(t, p.ID)

	require.NoError(t, Decode(json.RawMessage(`{"id":5}`), &p))
	assert.Equal(t, int64(5), p.ID)

	err := Decode(json.RawMessage(`["x"]`), &p)
	assert.ErrorIs(t, err, forum.ErrInvalidInput)
}

func TestLogger_AssignsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(Logger())

	var sawLogger bool
	engine.GET("/", func(c *gin.Context) {
		sawLogger = logging.FromContext(c.Request.Context()) != logging.GetLogger()
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.True(t, sawLogger)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, "given", rec.Header().Get("X-Request-ID"))
}

func TestRequireUser_Anonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	_, err := RequireUser(c)
	assert.ErrorIs(t, err, forum.ErrUnauthenticated)
	assert.Nil(t, Viewer(c))
	assert.Nil(t, UserLoader(c))
}

// Package accountapi implements the account_api JSON-RPC namespace.
package accountapi

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alpost/backend/internal/api/objects"
	"github.com/alpost/backend/internal/api/request"
	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/pkg/logging"
)

// API provides account_api methods
type API struct {
	svc *forum.Service
}

// New creates a new account API
func New(svc *forum.Service) *API {
	return &API{svc: svc}
}

// Register handles account_api.register and logs the new user in
func (a *API) Register(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p forum.RegisterInput
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	user, err := a.svc.Register(c.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	if err := request.Login(c, user.ID); err != nil {
		return nil, err
	}
	return objects.NewBuilder(nil, user.ID).User(user), nil
}

// Login handles account_api.login
func (a *API) Login(c *gin.Context, params json.RawMessage) (interface{}, error) {
	var p forum.LoginInput
	if err := request.Decode(params, &p); err != nil {
		return nil, err
	}
	user, err := a.svc.Login(c.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	if err := request.Login(c, user.ID); err != nil {
		return nil, err
	}
	return objects.NewBuilder(nil, user.ID).User(user), nil
}

// Logout handles account_api.logout. It reports false when the session
// could not be removed.
func (a *API) Logout(c *gin.Context, params json.RawMessage) (interface{}, error) {
	if err := request.Logout(c); err != nil {
		logging.FromContext(c.Request.Context()).Warn("Failed to destroy session", zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Me handles account_api.me
func (a *API) Me(c *gin.Context, params json.RawMessage) (interface{}, error) {
	userID := request.UserID(c)
	user, err := a.svc.Me(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	return objects.NewBuilder(nil, userID).User(user), nil
}

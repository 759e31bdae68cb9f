package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/alpost/backend/internal/api/accountapi"
	"github.com/alpost/backend/internal/api/forumapi"
	"github.com/alpost/backend/internal/api/request"
	"github.com/alpost/backend/internal/cache"
	"github.com/alpost/backend/internal/db"
	"github.com/alpost/backend/internal/forum"
	"github.com/alpost/backend/pkg/config"
	"github.com/alpost/backend/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler  *JSONRPCHandler
	db       *db.DB
	cache    *cache.Cache
	store    *db.Store
	service  *forum.Service
	sessions *cache.SessionStore
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(cfg *config.Config, database *db.DB, redisCache *cache.Cache) *Router {
	store := db.NewStore(database.DB)
	router := &Router{
		handler:  NewJSONRPCHandler(),
		db:       database,
		cache:    redisCache,
		store:    store,
		service:  forum.NewService(store),
		sessions: cache.NewSessionStore(redisCache, &cfg.Session, cfg.Server.Production),
		cfg:      cfg,
		logger:   logging.GetLogger().With(zap.String("component", "api-router")),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up middleware and all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	engine.Use(request.Logger())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     r.cfg.CORS.Origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)
	if r.cfg.Telemetry.Enabled && r.cfg.Telemetry.PrometheusEnabled {
		engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	engine.POST("/",
		request.Sessions(r.sessions, r.cfg.Session.CookieName),
		request.Loader(r.store.UsersByIDs),
		r.handler.Handle,
	)
}

// registerMethods registers all API methods
func (r *Router) registerMethods() {
	forumAPI := forumapi.New(r.service)

	r.handler.RegisterMethod("forum_api.vote", forumAPI.Vote)
	r.handler.RegisterMethod("forum_api.vote_reply", forumAPI.VoteReply)

	r.handler.RegisterMethod("forum_api.get_posts", forumAPI.GetPosts)
	r.handler.RegisterMethod("forum_api.get_replies", forumAPI.GetReplies)
	r.handler.RegisterMethod("forum_api.get_post", forumAPI.GetPost)
	r.handler.RegisterMethod("forum_api.get_reply", forumAPI.GetReply)
	r.handler.RegisterMethod("forum_api.get_user_posts", forumAPI.GetUserPosts)
	r.handler.RegisterMethod("forum_api.get_user_replies", forumAPI.GetUserReplies)
	r.handler.RegisterMethod("forum_api.get_user_votes", forumAPI.GetUserVotes)
	r.handler.RegisterMethod("forum_api.get_user_reply_votes", forumAPI.GetUserReplyVotes)

	r.handler.RegisterMethod("forum_api.create_post", forumAPI.CreatePost)
	r.handler.RegisterMethod("forum_api.create_reply", forumAPI.CreateReply)
	r.handler.RegisterMethod("forum_api.update_post", forumAPI.UpdatePost)
	r.handler.RegisterMethod("forum_api.update_reply", forumAPI.UpdateReply)
	r.handler.RegisterMethod("forum_api.delete_post", forumAPI.DeletePost)
	r.handler.RegisterMethod("forum_api.delete_reply", forumAPI.DeleteReply)

	accountAPI := accountapi.New(r.service)

	r.handler.RegisterMethod("account_api.register", accountAPI.Register)
	r.handler.RegisterMethod("account_api.login", accountAPI.Login)
	r.handler.RegisterMethod("account_api.logout", accountAPI.Logout)
	r.handler.RegisterMethod("account_api.me", accountAPI.Me)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := gin.H{"database": "OK", "redis": "OK"}
	if err := r.db.Health(ctx); err != nil {
		r.logger.Warn("Database health check failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		checks["database"] = err.Error()
	}
	if err := r.cache.Health(ctx); err != nil {
		r.logger.Warn("Redis health check failed", zap.Error(err))
		status = http.StatusServiceUnavailable
		checks["redis"] = err.Error()
	}

	result := "OK"
	if status != http.StatusOK {
		result = "DEGRADED"
	}
	c.JSON(status, gin.H{
		"status":  result,
		"service": "alpost-api",
		"checks":  checks,
	})
}

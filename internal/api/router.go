package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yatube/yatube/internal/authoring"
	"github.com/yatube/yatube/internal/cache"
	"github.com/yatube/yatube/internal/db"
	"github.com/yatube/yatube/internal/feed"
	"github.com/yatube/yatube/internal/follow"
	"github.com/yatube/yatube/pkg/config"
	"github.com/yatube/yatube/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler   *JSONRPCHandler
	db        *db.DB
	pages     *cache.PageCache
	views     *Views
	authoring *authoring.Service
	follows   *follow.Manager
	auth      *Authenticator
	limiter   *RateLimiter
	logger    *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, pages *cache.PageCache, cfg *config.Config) *Router {
	repo := db.NewRepository(database.DB)
	engine := feed.NewEngine(repo)
	follows := follow.NewManager(repo)
	service := authoring.NewService(repo)

	router := &Router{
		handler:   NewJSONRPCHandler(),
		db:        database,
		pages:     pages,
		authoring: service,
		follows:   follows,
		views: &Views{
			engine:  engine,
			follows: follows,
			pages:   pages,
		},
		auth:    NewAuthenticator(&cfg.Auth, service),
		limiter: NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		logger:  logging.WithComponent("api-router"),
	}

	router.registerMethods()

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/rpc", r.auth.Middleware(), r.handler.Handle)

	v1 := engine.Group("/api/v1", r.auth.Middleware())
	v1.GET("/posts", r.getIndex)
	v1.GET("/posts/:id", r.getPost)
	v1.GET("/groups", r.listGroups)
	v1.GET("/groups/:slug/posts", r.getGroupPosts)
	v1.GET("/profiles/:username", r.getProfile)

	authed := v1.Group("", RequireAuth())
	authed.GET("/follow", r.getFollowIndex)

	writes := authed.Group("", r.limiter.Middleware())
	writes.POST("/posts", r.createPost)
	writes.PUT("/posts/:id", r.editPost)
	writes.POST("/posts/:id/comments", r.addComment)
	writes.POST("/profiles/:username/follow", r.followProfile)
	writes.DELETE("/profiles/:username/follow", r.unfollowProfile)

	admin := v1.Group("/admin", RequireRole(RoleAdmin))
	admin.POST("/groups", r.createGroup)
	admin.DELETE("/groups/:slug", r.deleteGroup)
	admin.DELETE("/users/:username", r.deleteUser)
	admin.POST("/cache/invalidate", r.invalidateCache)
}

// registerMethods registers all JSON-RPC methods
func (r *Router) registerMethods() {
	r.handler.RegisterMethod("yatube.get_index", r.rpcGetIndex)
	r.handler.RegisterMethod("yatube.get_group_posts", r.rpcGetGroupPosts)
	r.handler.RegisterMethod("yatube.get_profile", r.rpcGetProfile)
	r.handler.RegisterMethod("yatube.get_post", r.rpcGetPost)
	r.handler.RegisterMethod("yatube.list_groups", r.rpcListGroups)

	r.handler.RegisterMethod("yatube.get_follow_index", r.authenticated(r.rpcGetFollowIndex))
	r.handler.RegisterMethod("yatube.create_post", r.limited(r.rpcCreatePost))
	r.handler.RegisterMethod("yatube.edit_post", r.limited(r.rpcEditPost))
	r.handler.RegisterMethod("yatube.add_comment", r.limited(r.rpcAddComment))
	r.handler.RegisterMethod("yatube.follow", r.limited(r.rpcFollow))
	r.handler.RegisterMethod("yatube.unfollow", r.limited(r.rpcUnfollow))
}

// healthHandler reports database and cache health
func (r *Router) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := gin.H{
		"status":   "OK",
		"service":  "yatube-api",
		"database": "ok",
		"cache":    "ok",
	}
	if err := r.db.Health(ctx); err != nil {
		r.logger.Warn("Database unhealthy", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "DEGRADED"
		body["database"] = err.Error()
	}
	if err := r.pages.Health(ctx); err != nil {
		r.logger.Warn("Cache unhealthy", zap.Error(err))
		status = http.StatusServiceUnavailable
		body["status"] = "DEGRADED"
		body["cache"] = err.Error()
	}
	c.JSON(status, body)
}

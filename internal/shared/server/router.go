package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "github.com/DragX-cyber/Legal-Mate/internal/auth"
	"github.com/DragX-cyber/Legal-Mate/internal/chat"
	"github.com/DragX-cyber/Legal-Mate/internal/contracts"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/config"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/metrics"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/middleware"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/respond"
	"github.com/DragX-cyber/Legal-Mate/internal/users"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config           config.Config
	ContractsHandler *contracts.Handler
	SessionsHandler  *sessions.Handler
	ChatHandler      *chat.Handler
	UsersHandler     *users.Handler
	GoogleAuth       *googleauth.GoogleService
}

// rateLimitConfig throttles the model-backed routes harder than the rest.
func rateLimitConfig() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"DEFAULT": {Rate: 5, Burst: 20},
			"MODEL":   {Rate: 0.5, Burst: 5},
		},
		DefaultGroup: "DEFAULT",
		GroupFor: func(c *gin.Context) string {
			p := c.FullPath()
			if strings.HasSuffix(p, "/chat") || strings.HasPrefix(p, "/api/v1/contracts/analyze") {
				return "MODEL"
			}
			return "DEFAULT"
		},
	}
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(rateLimitConfig()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.ContractsHandler != nil {
		deps.ContractsHandler.RegisterRoutes(api)
	}
	if deps.SessionsHandler != nil {
		deps.SessionsHandler.RegisterRoutes(api)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

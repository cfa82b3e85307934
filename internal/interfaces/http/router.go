// Package http assembles the gin router of the API server.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediclic/vademecum-ai/internal/infrastructure/auth"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/prometheus"
	"github.com/mediclic/vademecum-ai/internal/interfaces/http/handlers"
)

// RouterDeps carries everything the router mounts.
type RouterDeps struct {
	Chat    *handlers.ChatHandler
	Auth    *handlers.AuthHandler
	Search  *handlers.SearchHandler
	Admin   *handlers.AdminHandler
	Health  *handlers.HealthHandler
	Issuer  *auth.TokenIssuer
	Metrics *prometheus.Metrics
	Logger  logging.Logger
	Mode    string
}

// NewRouter builds the full route table.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLog(logger.Named("http")), cors())

	router.GET("/healthz", deps.Health.Live)
	router.GET("/debug/health", deps.Health.Detail)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.POST("/auth/login", deps.Auth.Login)
	router.GET("/medicamentos/buscar", deps.Search.Search)

	chat := router.Group("/chat", auth.Middleware(deps.Issuer))
	chat.POST("/ask", deps.Chat.Ask)

	admin := router.Group("/admin", auth.Middleware(deps.Issuer, "admin"))
	admin.POST("/medicamentos/upsert", deps.Admin.Upsert)
	admin.POST("/vocab/rebuild", deps.Admin.RebuildVocabulary)

	return router
}

// requestLog emits one structured entry per request.
func requestLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("latency", time.Since(start)),
		)
	}
}

// cors permits the web frontends; the API carries no cookies so a wildcard
// origin is acceptable.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"grocerysearch/internal/metrics"
	"grocerysearch/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// RouterConfig wires the HTTP surface
type RouterConfig struct {
	SearchService       *service.SearchService
	Logger              *zap.Logger
	Build               BuildInfo
	EmbeddingDimensions int
	AllowedOrigins      string
	AllowedMethods      string
	AllowedHeaders      string
	// Ready reports store health for /health; nil means always healthy.
	Ready func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route and middleware
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	router := gin.New()
	router.Use(RequestLogger(log))
	router.Use(Recovery(log))
	router.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	origins := splitList(cfg.AllowedOrigins, "*")
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = splitList(cfg.AllowedMethods, "GET", "POST", "OPTIONS")
	corsConfig.AllowHeaders = splitList(cfg.AllowedHeaders, "Content-Type", "Authorization")
	corsConfig.ExposeHeaders = []string{RequestIDHeader}
	router.Use(cors.New(corsConfig))

	searchHandler := NewSearchHandler(cfg.SearchService)
	embeddingHandler := NewEmbeddingHandler(cfg.SearchService, cfg.EmbeddingDimensions)
	feedbackHandler := NewFeedbackHandler(cfg.SearchService)

	router.GET("/health", func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if cfg.Ready != nil {
			if err := cfg.Ready(c.Request.Context()); err != nil {
				status, code = "unhealthy", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":     status,
			"service":    "grocery-search",
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    cfg.Build.Version,
			"build_time": cfg.Build.BuildTime,
			"git_commit": cfg.Build.GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/search", searchHandler.Search)
	router.GET("/categories", searchHandler.Categories)

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/search", searchHandler.Search)
		apiV1.POST("/search", searchHandler.SearchJSON)
		apiV1.GET("/categories", searchHandler.Categories)
		apiV1.GET("/products/:id", searchHandler.GetProduct)
		apiV1.GET("/products/:id/embedding", embeddingHandler.Get)

		apiV1.POST("/embeddings/batch", embeddingHandler.BatchUpdate)

		apiV1.POST("/feedback", feedbackHandler.Submit)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
	})

	return router
}

func splitList(value string, fallback ...string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

package api

import (
	"context"
	"net/http"
	"time"

	"recipe-remix/internal/api/handlers/health"
	savedHandler "recipe-remix/internal/api/handlers/saved"
	sessionHandler "recipe-remix/internal/api/handlers/session"
	"recipe-remix/internal/api/middleware"
	"recipe-remix/internal/core/image"
	"recipe-remix/internal/core/session"
	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// AI 呼叫可能跑滿模型輸出，整體請求給到兩分鐘
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (10MB)
	maxBodySize = 10 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, manager *session.Manager) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.Use(middleware.BodySizeLimit(maxBodySize))
	router.Use(middleware.Deduplication(cfg))

	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}

	// 請求超時包裝
	router.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  common.ErrCodeRequestTimeout,
			})
			c.Abort()
		}
	})

	imageSvc := image.NewService(cfg.Image.MaxSizeBytes)

	healthH := health.NewHandler(cfg, manager)
	sessionH := sessionHandler.NewHandler(manager, imageSvc)
	savedH := savedHandler.NewHandler(manager)

	// 健康檢查路由
	router.GET("/health", healthH.HealthCheck)
	router.GET("/ready", healthH.ReadinessCheck)
	router.GET("/live", healthH.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		api.POST("/session", sessionH.HandleCreate)

		sess := api.Group("/session/:id")
		{
			sess.GET("", sessionH.HandleSnapshot)
			sess.POST("/reset", sessionH.HandleReset)

			sess.POST("/analyze", sessionH.HandleAnalyze)
			sess.POST("/ingredients/sample", sessionH.HandleLoadSample)
			sess.POST("/ingredients", sessionH.HandleAddIngredient)
			sess.DELETE("/ingredients/:idx", sessionH.HandleRemoveIngredient)

			sess.POST("/recipes", sessionH.HandleFindRecipes)
			sess.POST("/recipes/select", sessionH.HandleSelectRecipe)
			sess.POST("/substitutions", sessionH.HandleSubstitutions)
			sess.POST("/back", sessionH.HandleBack)
			sess.POST("/cancel", sessionH.HandleCancel)

			sess.POST("/chat", sessionH.HandleChat)
			sess.POST("/chat/confirm", sessionH.HandleConfirmPatch)
			sess.POST("/chat/discard", sessionH.HandleDiscardPatch)

			sess.POST("/saved/open", sessionH.HandleOpenSaved)
			sess.POST("/saved", savedH.HandleSave)
			sess.GET("/saved", savedH.HandleList)
			sess.GET("/saved/count", savedH.HandleCount)
			sess.DELETE("/saved/:savedID", savedH.HandleDelete)
			sess.PUT("/saved/:savedID/favorite", savedH.HandleSetFavorite)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-remix/internal/api"
	"recipe-remix/internal/core/ai/cache"
	aiService "recipe-remix/internal/core/ai/service"
	"recipe-remix/internal/core/recipe"
	"recipe-remix/internal/core/session"
	"recipe-remix/internal/core/storage"
	"recipe-remix/internal/infrastructure/config"
	"recipe-remix/internal/pkg/common"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 載入 .env
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	// 載入設定
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
	)

	// 初始化快取
	cacheManager := cache.NewManager(cfg)
	if cfg.Cache.Enabled && cacheManager == nil {
		common.LogFatal("Failed to initialize cache manager")
	}
	defer cacheManager.Close()

	// 初始化 AI 服務與各協作方
	ai := aiService.NewService(cfg, cacheManager)

	// 食譜儲存：Redis 未啟用時退回記憶體儲存
	var store storage.Gateway
	if cfg.Redis.Enabled {
		redisStore, err := storage.NewRedisStore(&cfg.Redis)
		if err != nil {
			common.LogFatal("Failed to connect to Redis store", zap.Error(err))
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		common.LogInfo("Redis 未啟用，使用記憶體食譜儲存")
		store = storage.NewMemoryStore()
	}

	// 初始化會話管理器
	manager := session.NewManager(&cfg.Session, session.Collaborators{
		Detector:    recipe.NewDetectionService(ai),
		Generator:   recipe.NewGenerationService(ai),
		Substituter: recipe.NewSubstitutionService(ai),
		Chatter:     recipe.NewChatService(ai),
		Store:       store,
	})
	defer manager.Close()

	// 設置路由
	router := api.SetupRouter(cfg, manager)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Bool("debug", cfg.App.Debug),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			common.LogError("Failed to start server", zap.Error(err))
			os.Exit(1)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	common.LogInfo("Server exited")
}

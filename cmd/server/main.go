package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ujjwalpathaak/ai-code-editor/internal/completion"
	"github.com/ujjwalpathaak/ai-code-editor/internal/config"
	"github.com/ujjwalpathaak/ai-code-editor/internal/db"
	"github.com/ujjwalpathaak/ai-code-editor/internal/logger"
	"github.com/ujjwalpathaak/ai-code-editor/internal/middleware"
	"github.com/ujjwalpathaak/ai-code-editor/internal/relay"
	"github.com/ujjwalpathaak/ai-code-editor/internal/snippet"
	"github.com/ujjwalpathaak/ai-code-editor/internal/worker"
	"github.com/ujjwalpathaak/ai-code-editor/redis"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"
)

func main() {
	// Load configuration
	config.LoadConfig()
	logger.Init(config.AppConfig.Environment, config.AppConfig.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	if err := db.ConnectDb(); err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.CloseDb()

	// Migrate database schema
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	// Seed database with initial data (for development)
	if config.AppConfig.Environment == "development" {
		db.SeedData(ctx)
	}

	// Initialize Redis, optional
	redis.InitRedis()
	defer redis.CloseRedis()

	pool := worker.NewWorkerPool(config.AppConfig.WorkerPoolSize)
	defer pool.Shutdown()

	// Realtime relay, bridged through redis when it is up
	hub := relay.NewHub()
	var bridge *relay.Bridge
	if redis.RedisClient != nil {
		bridge = relay.NewBridge(redis.RedisClient, config.AppConfig.RelayChannel)
		hub.SetPublisher(bridge)
	}

	// Completion gateway
	var generator completion.Generator
	if config.AppConfig.GeminiAPIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY not set, completion requests will fail")
	} else {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  config.AppConfig.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Error().Err(err).Msg("failed to create GenAI client")
		} else {
			generator = client.Models
		}
	}
	gateway := completion.NewGateway(generator, completion.Options{
		Model:   config.AppConfig.GeminiModel,
		Rate:    config.AppConfig.CompletionRate,
		Burst:   config.AppConfig.CompletionBurst,
		Timeout: config.AppConfig.CompletionTimeout,
	})

	// Initialize repository
	snippetRepo := snippet.NewRepository(db.AppDb)
	// Initialize service
	snippetService := snippet.NewService(snippetRepo, redis.NewCache(redis.RedisClient), pool, config.AppConfig.SnippetCacheTTL)
	// Initialize handler
	snippetHandler := snippet.NewHandler(snippetService)
	completionHandler := completion.NewHandler(gateway)
	development := config.AppConfig.Environment == "development"
	relayHandler := relay.NewHandler(hub, config.AppConfig.FrontendAddress, development)

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}

	if development {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		// Restrict origins in production
		corsConfig.AllowOrigins = []string{config.AppConfig.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.ErrorHandler())

	router.GET("/ws", relayHandler.Serve)
	router.POST("/ai-completion", completionHandler.Complete)
	router.POST("/saveCode", snippetHandler.Save)
	router.GET("/loadCode/:id", snippetHandler.Load)
	router.GET("/snippets", snippetHandler.List)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":       "ok",
			"participants": hub.Count(),
			"redis":        redis.RedisClient != nil,
		})
	})

	// Server configuration
	serverPort := config.AppConfig.ServerPort
	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", serverPort),
		Handler: router.Handler(),
	}

	g, gctx := errgroup.WithContext(ctx)

	// Start server
	g.Go(func() error {
		log.Info().Str("port", serverPort).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	if bridge != nil {
		g.Go(func() error {
			// losing the bridge leaves the relay process-local, the server keeps running
			if err := bridge.Run(gctx, hub, nil); err != nil {
				log.Error().Err(err).Msg("relay bridge stopped")
			}
			return nil
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		// websocket connections are hijacked, Shutdown does not see them
		hub.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		return
	}
	log.Info().Msg("Server shutdown complete")
}

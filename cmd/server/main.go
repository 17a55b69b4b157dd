package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"bandstand/internal/auth"
	"bandstand/internal/config"
	"bandstand/internal/handler"
	"bandstand/internal/middleware"
	"bandstand/internal/realtime"
	"bandstand/internal/repository/postgres"
	"bandstand/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
)

// maxLogFiles bounds how many rotated log files LOG_DIR retains.
const maxLogFiles = 10

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	// With LOG_DIR set, logs are mirrored to a timestamped file that is
	// rotated alongside the previous runs' files
	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, maxLogFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier backed by the identity provider's JWKS endpoint
	verifier, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer verifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis client for cross-instance event fan-out
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse redis URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to redis: %v", err)
	}
	logger.Info("redis connected")

	// Realtime gateway
	hub := realtime.NewHub()
	go hub.Run()

	gateway := realtime.NewGateway(hub, rdb, logger)
	go gateway.Run(ctx)

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	setlistRepo := postgres.NewSetlistRepository(repoConfig)
	itemRepo := postgres.NewItemRepository(repoConfig)
	versionRepo := postgres.NewVersionRepository(repoConfig)
	commentRepo := postgres.NewCommentRepository(repoConfig)
	songRepo := postgres.NewSongRepository(repoConfig)
	memberRepo := postgres.NewMembershipRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	authorizer := service.NewBandAwareAuthorizer(memberRepo)
	setlistService := service.NewSetlistService(setlistRepo, itemRepo, versionRepo, commentRepo, songRepo, memberRepo, txManager, authorizer, gateway, logger)
	orderingService := service.NewOrderingService(setlistRepo, itemRepo, songRepo, txManager, authorizer, gateway, logger)
	versionService := service.NewVersionService(setlistRepo, itemRepo, versionRepo, txManager, authorizer, gateway, logger)
	commentService := service.NewCommentService(setlistRepo, commentRepo, authorizer, gateway, logger)

	// Create handlers
	setlistHandler := handler.NewSetlistHandler(setlistService, logger, cfg.Debug)
	itemHandler := handler.NewItemHandler(orderingService, logger, cfg.Debug)
	versionHandler := handler.NewVersionHandler(versionService, logger, cfg.Debug)
	commentHandler := handler.NewCommentHandler(commentService, logger, cfg.Debug)
	wsHandler := handler.NewWSHandler(gateway)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", setlistHandler.HealthCheck)

	// Setlist routes
	mux.HandleFunc("GET /api/setlists", setlistHandler.ListSetlists)
	mux.HandleFunc("POST /api/setlists", setlistHandler.CreateSetlist)
	mux.HandleFunc("GET /api/setlists/{id}", setlistHandler.GetSetlist)
	mux.HandleFunc("PUT /api/setlists/{id}", setlistHandler.UpdateSetlist)
	mux.HandleFunc("DELETE /api/setlists/{id}", setlistHandler.DeleteSetlist)
	mux.HandleFunc("GET /api/setlists/{id}/export", setlistHandler.ExportSetlist)

	// Item routes
	mux.HandleFunc("GET /api/setlists/{id}/items", itemHandler.ListItems)
	mux.HandleFunc("POST /api/setlists/{id}/items", itemHandler.AddItem)
	mux.HandleFunc("PUT /api/setlists/{id}/items/{itemId}", itemHandler.UpdateItem)
	mux.HandleFunc("DELETE /api/setlists/{id}/items/{itemId}", itemHandler.RemoveItem)
	mux.HandleFunc("PUT /api/setlists/{id}/reorder", itemHandler.Reorder)

	// Version routes
	mux.HandleFunc("GET /api/setlists/{id}/versions", versionHandler.ListVersions)
	mux.HandleFunc("POST /api/setlists/{id}/versions", versionHandler.CreateVersion)
	mux.HandleFunc("GET /api/setlists/{id}/versions/{versionId}", versionHandler.GetVersion)
	mux.HandleFunc("POST /api/setlists/{id}/versions/{versionId}/restore", versionHandler.Restore)

	// Comment routes
	mux.HandleFunc("GET /api/setlists/{id}/comments", commentHandler.ListComments)
	mux.HandleFunc("POST /api/setlists/{id}/comments", commentHandler.AddComment)
	mux.HandleFunc("DELETE /api/setlists/{id}/comments/{commentId}", commentHandler.DeleteComment)

	// Websocket endpoint
	mux.HandleFunc("GET /ws", wsHandler.Connect)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Auth → Routes
	root = middleware.Auth(verifier)(root)
	root = middleware.Recovery(logger)(root)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // Disabled to allow long-lived websocket sessions
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"agentx/internal/auth"
	"agentx/internal/capabilities"
	"agentx/internal/config"
	"agentx/internal/handler"
	"agentx/internal/middleware"
	"agentx/internal/provider"
	"agentx/internal/repository/postgres"
	authService "agentx/internal/service/auth"
	chatService "agentx/internal/service/chat"
	documentService "agentx/internal/service/document"
	projectService "agentx/internal/service/project"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Token manager for session auth
	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}

	// Database
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}
	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	userRepo := postgres.NewUserRepository(repoConfig)
	projectRepo := postgres.NewProjectRepository(repoConfig)
	promptRepo := postgres.NewPromptRepository(repoConfig)
	documentRepo := postgres.NewDocumentRepository(repoConfig)
	turnRepo := postgres.NewTurnRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Model catalog and completion providers
	catalog, err := capabilities.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to load model catalog: %v", err)
	}
	providers, err := provider.Setup(cfg, catalog, logger)
	if err != nil {
		log.Fatalf("Failed to setup completion providers: %v", err)
	}

	// Services
	authSvc := authService.NewService(userRepo, tokens, logger)
	projectSvc := projectService.NewService(projectRepo, promptRepo, documentRepo, turnRepo, txManager, logger)
	documentSvc := documentService.NewService(documentRepo, logger)
	chatSvc := chatService.NewService(turnRepo, documentRepo, providers, cfg, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, logger)
	projectHandler := handler.NewProjectHandler(projectSvc, logger)
	documentHandler := handler.NewDocumentHandler(documentSvc, logger)
	chatHandler := handler.NewChatHandler(chatSvc, logger)
	modelsHandler := handler.NewModelsHandler(catalog, logger)

	logger.Info("services initialized")

	// Router (Go 1.22+ method patterns). Project and prompt routes require a
	// token; chat and file routes are project-scoped like the rest of the API
	// surface they serve.
	mux := http.NewServeMux()
	protected := middleware.Auth(tokens)

	mux.HandleFunc("GET /health", documentHandler.HealthCheck)

	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	mux.Handle("GET /api/projects", protected(http.HandlerFunc(projectHandler.ListProjects)))
	mux.Handle("POST /api/projects", protected(http.HandlerFunc(projectHandler.CreateProject)))
	mux.Handle("GET /api/projects/{id}", protected(http.HandlerFunc(projectHandler.GetProject)))
	mux.Handle("DELETE /api/projects/{id}", protected(http.HandlerFunc(projectHandler.DeleteProject)))
	mux.Handle("POST /api/projects/{id}/prompts", protected(http.HandlerFunc(projectHandler.CreatePrompt)))
	mux.Handle("GET /api/projects/{id}/prompts", protected(http.HandlerFunc(projectHandler.ListPrompts)))

	mux.HandleFunc("POST /api/files", documentHandler.CreateDocument)
	mux.HandleFunc("GET /api/files/{projectId}", documentHandler.ListDocuments)
	mux.HandleFunc("DELETE /api/files/{id}", documentHandler.DeleteDocument)

	mux.HandleFunc("GET /api/chat/{projectId}", chatHandler.History)
	mux.HandleFunc("POST /api/chat", chatHandler.Converse)

	mux.HandleFunc("GET /api/models", modelsHandler.ListModels)

	// Middleware chain: CORS -> logging -> recovery -> routes
	var root http.Handler = mux
	root = middleware.Recovery(logger)(root)
	root = middleware.Logging(logger)(root)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
	})
	root = corsHandler.Handler(root)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // disabled so completion streams can outlive slow providers
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

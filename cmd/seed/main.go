package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"agentx/internal/auth"
	"agentx/internal/config"
	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
	"agentx/internal/repository/postgres"
	authService "agentx/internal/service/auth"
)

// Seeds a demo account with one project, a prompt, documents and a short
// conversation, so the frontend has something to show against a fresh
// database.
func main() {
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed data")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: never run destructive operations against prod tables
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

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

	tokens, err := auth.NewTokenManager(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to create token manager: %v", err)
	}
	authSvc := authService.NewService(userRepo, tokens, logger)

	log.Println("👤 Creating demo account...")
	result, err := authSvc.Register(ctx, &services.RegisterRequest{
		Name:     "Demo User",
		Email:    "demo@example.com",
		Password: "demo-password",
	})
	if err != nil {
		log.Fatalf("Failed to create demo account (already seeded?): %v", err)
	}

	log.Println("📁 Creating demo project...")
	project := &models.Project{
		UserID:      result.User.ID,
		Name:        "Getting Started",
		Description: "A seeded project with documents and a short conversation",
	}
	if err := projectRepo.Create(ctx, project); err != nil {
		log.Fatalf("Failed to create project: %v", err)
	}

	prompt := &models.Prompt{
		ProjectID: project.ID,
		Title:     "Summarize",
		Content:   "Summarize the attached documents in three bullet points.",
	}
	if err := promptRepo.Create(ctx, prompt); err != nil {
		log.Fatalf("Failed to create prompt: %v", err)
	}

	log.Println("📝 Seeding documents...")
	for i, doc := range demoDocuments(project.ID) {
		if err := documentRepo.Create(ctx, &doc); err != nil {
			log.Fatalf("Failed to create document %d: %v", i, err)
		}
	}

	log.Println("💬 Seeding conversation...")
	for i, turn := range demoTurns(project.ID) {
		if err := turnRepo.Append(ctx, &turn); err != nil {
			log.Fatalf("Failed to append turn %d: %v", i, err)
		}
	}

	log.Printf("✅ Seed complete: demo@example.com / demo-password, project %s", project.ID)
}

func demoDocuments(projectID string) []models.Document {
	return []models.Document{
		{
			ProjectID: projectID,
			Filename:  "welcome.txt",
			Content:   "This project demonstrates document-grounded chat. Documents attached to a project are merged into the conversation context.",
		},
		{
			ProjectID: projectID,
			Filename:  "notes.md",
			Content:   "# Notes\n\n- Conversations are stored per project\n- Ask about the attached documents to see grounding in action",
		},
	}
}

func demoTurns(projectID string) []models.Turn {
	return []models.Turn{
		{ProjectID: projectID, Role: models.RoleUser, Content: "What documents do I have in this project?"},
		{ProjectID: projectID, Role: models.RoleAssistant, Content: "You have two documents: welcome.txt, which explains document-grounded chat, and notes.md, a short note about how conversations are stored."},
	}
}

// dropAllTables removes every prefixed table, children before parents so the
// foreign keys don't block the drops.
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	ordered := []string{tables.Turns, tables.Documents, tables.Prompts, tables.Projects, tables.Users}
	for _, table := range ordered {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
	}
	return nil
}

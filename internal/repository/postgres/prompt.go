package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
)

// PostgresPromptRepository implements the PromptRepository interface
type PostgresPromptRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewPromptRepository creates a new prompt repository
func NewPromptRepository(config *RepositoryConfig) repositories.PromptRepository {
	return &PostgresPromptRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Create inserts a prompt under a project.
func (r *PostgresPromptRepository) Create(ctx context.Context, prompt *models.Prompt) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, title, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Prompts)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		prompt.ProjectID,
		prompt.Title,
		prompt.Content,
	).Scan(&prompt.ID, &prompt.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", prompt.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("create prompt: %w", err)
	}

	return nil
}

// ListByProject returns a project's prompts in creation order.
func (r *PostgresPromptRepository) ListByProject(ctx context.Context, projectID string) ([]models.Prompt, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, title, content, created_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, r.tables.Prompts)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.Prompt{}
	for rows.Next() {
		var prompt models.Prompt
		if err := rows.Scan(
			&prompt.ID,
			&prompt.ProjectID,
			&prompt.Title,
			&prompt.Content,
			&prompt.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, prompt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prompts: %w", err)
	}

	return prompts, nil
}

// DeleteByProject removes every prompt of a project (cascade delete).
func (r *PostgresPromptRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, r.tables.Prompts)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("delete prompts: %w", err)
	}

	return nil
}

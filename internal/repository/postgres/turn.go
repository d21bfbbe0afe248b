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

// PostgresTurnRepository implements the TurnRepository interface using PostgreSQL.
// The table is append-only: this repository issues no UPDATE and the only
// DELETE is the whole-project cascade.
type PostgresTurnRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewTurnRepository creates a new PostgresTurnRepository
func NewTurnRepository(config *RepositoryConfig) repositories.TurnRepository {
	return &PostgresTurnRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

// Append inserts a turn and fills in the generated ID and timestamp.
func (r *PostgresTurnRepository) Append(ctx context.Context, turn *models.Turn) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (project_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, r.tables.Turns)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		turn.ProjectID,
		turn.Role,
		turn.Content,
	).Scan(&turn.ID, &turn.CreatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("project %s: %w", turn.ProjectID, domain.ErrNotFound)
		}
		return fmt.Errorf("append turn: %w", err)
	}

	return nil
}

// ListByProject returns all turns for a project ordered by created_at ascending.
func (r *PostgresTurnRepository) ListByProject(ctx context.Context, projectID string) ([]models.Turn, error) {
	query := fmt.Sprintf(`
		SELECT id, project_id, role, content, created_at
		FROM %s
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, r.tables.Turns)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("list turns: %w", err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var turn models.Turn
		if err := rows.Scan(
			&turn.ID,
			&turn.ProjectID,
			&turn.Role,
			&turn.Content,
			&turn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, turn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turns: %w", err)
	}

	return turns, nil
}

// DeleteByProject removes every turn of a project. Part of the project
// cascade delete; never called on its own.
func (r *PostgresTurnRepository) DeleteByProject(ctx context.Context, projectID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE project_id = $1`, r.tables.Turns)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, projectID); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}

	return nil
}

package repositories

import (
	"context"

	"agentx/internal/domain/models"
)

// TurnRepository is the append-only conversation store. Turns are never
// updated or individually deleted; whole-project deletion goes through
// DeleteByProject as part of the project cascade.
type TurnRepository interface {
	// Append inserts a turn and fills in its ID and CreatedAt.
	Append(ctx context.Context, turn *models.Turn) error

	// ListByProject returns all turns for a project ordered by CreatedAt
	// ascending.
	ListByProject(ctx context.Context, projectID string) ([]models.Turn, error)

	// DeleteByProject removes every turn of a project. Only called from the
	// project cascade delete.
	DeleteByProject(ctx context.Context, projectID string) error
}

package repositories

import (
	"context"

	"agentx/internal/domain/models"
)

// ProjectRepository stores projects and their prompts.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id, userID string) (*models.Project, error)
	ListByUser(ctx context.Context, userID string) ([]models.Project, error)
	Delete(ctx context.Context, id string) error
}

// PromptRepository stores reusable prompt snippets per project.
type PromptRepository interface {
	Create(ctx context.Context, prompt *models.Prompt) error
	ListByProject(ctx context.Context, projectID string) ([]models.Prompt, error)
	DeleteByProject(ctx context.Context, projectID string) error
}

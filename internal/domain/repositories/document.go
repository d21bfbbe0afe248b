package repositories

import (
	"context"

	"agentx/internal/domain/models"
)

// DocumentRepository stores extracted document text per project.
type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error

	// ListByProject returns full documents (including content) in stored
	// order. The chat context assembler consumes this.
	ListByProject(ctx context.Context, projectID string) ([]models.Document, error)

	// ListInfoByProject returns document metadata without content, for
	// listings.
	ListInfoByProject(ctx context.Context, projectID string) ([]models.DocumentInfo, error)

	Delete(ctx context.Context, id string) error

	// DeleteByProject removes every document of a project (cascade delete).
	DeleteByProject(ctx context.Context, projectID string) error
}

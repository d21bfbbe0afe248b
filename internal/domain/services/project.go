package services

import (
	"context"

	"agentx/internal/domain/models"
)

// CreateProjectRequest is the DTO for creating a project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UserID      string `json:"-"` // set by the handler from the auth context
}

// CreatePromptRequest is the DTO for saving a prompt under a project.
type CreatePromptRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ProjectService manages projects and their prompts.
type ProjectService interface {
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	GetProject(ctx context.Context, id, userID string) (*models.Project, error)
	ListProjects(ctx context.Context, userID string) ([]models.Project, error)

	// DeleteProject removes the project together with its turns, prompts and
	// documents in one transaction.
	DeleteProject(ctx context.Context, id, userID string) error

	CreatePrompt(ctx context.Context, projectID string, req *CreatePromptRequest) (*models.Prompt, error)
	ListPrompts(ctx context.Context, projectID string) ([]models.Prompt, error)
}

// CreateDocumentRequest is the DTO for registering an extracted document.
// Content is the extracted text; extraction itself happens upstream of this
// service.
type CreateDocumentRequest struct {
	ProjectID string `json:"project_id"`
	Filename  string `json:"filename"`
	Content   string `json:"content"`
}

// DocumentService manages extracted documents per project.
type DocumentService interface {
	CreateDocument(ctx context.Context, req *CreateDocumentRequest) (*models.Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]models.DocumentInfo, error)
	DeleteDocument(ctx context.Context, id string) error
}

package document

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
	"agentx/internal/domain/services"
)

// Service implements the DocumentService interface. It stores extracted
// text only; turning PDFs or uploads into text happens before the content
// reaches this service.
type Service struct {
	documents repositories.DocumentRepository
	logger    *slog.Logger
}

// NewService creates a new document service
func NewService(documents repositories.DocumentRepository, logger *slog.Logger) services.DocumentService {
	return &Service{
		documents: documents,
		logger:    logger,
	}
}

// CreateDocument registers an extracted document under a project.
func (s *Service) CreateDocument(ctx context.Context, req *services.CreateDocumentRequest) (*models.Document, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ProjectID, validation.Required),
		validation.Field(&req.Filename, validation.Required, validation.Length(1, 255)),
		validation.Field(&req.Content, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	doc := &models.Document{
		ProjectID: req.ProjectID,
		Filename:  req.Filename,
		Content:   strings.TrimSpace(req.Content),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("document created",
		"project_id", doc.ProjectID,
		"filename", doc.Filename,
		"content_length", len(doc.Content),
	)

	return doc, nil
}

// ListDocuments returns document metadata for a project, without content.
func (s *Service) ListDocuments(ctx context.Context, projectID string) ([]models.DocumentInfo, error) {
	return s.documents.ListInfoByProject(ctx, projectID)
}

// DeleteDocument removes a document.
func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	return s.documents.Delete(ctx, id)
}

package project

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
	"agentx/internal/domain/services"
)

// Service implements the ProjectService interface.
type Service struct {
	projects  repositories.ProjectRepository
	prompts   repositories.PromptRepository
	documents repositories.DocumentRepository
	turns     repositories.TurnRepository
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewService creates a new project service
func NewService(
	projects repositories.ProjectRepository,
	prompts repositories.PromptRepository,
	documents repositories.DocumentRepository,
	turns repositories.TurnRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.ProjectService {
	return &Service{
		projects:  projects,
		prompts:   prompts,
		documents: documents,
		turns:     turns,
		txManager: txManager,
		logger:    logger,
	}
}

// CreateProject creates a project owned by the requesting user.
func (s *Service) CreateProject(ctx context.Context, req *services.CreateProjectRequest) (*models.Project, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 200)),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	project := &models.Project{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	return project, nil
}

// GetProject retrieves a project owned by the user.
func (s *Service) GetProject(ctx context.Context, id, userID string) (*models.Project, error) {
	return s.projects.GetByID(ctx, id, userID)
}

// ListProjects returns the user's projects.
func (s *Service) ListProjects(ctx context.Context, userID string) ([]models.Project, error) {
	return s.projects.ListByUser(ctx, userID)
}

// DeleteProject removes a project and all data hanging off it. Everything
// goes in one transaction so a failure partway leaves the project intact.
func (s *Service) DeleteProject(ctx context.Context, id, userID string) error {
	// Ownership check before touching anything
	if _, err := s.projects.GetByID(ctx, id, userID); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.turns.DeleteByProject(txCtx, id); err != nil {
			return err
		}
		if err := s.prompts.DeleteByProject(txCtx, id); err != nil {
			return err
		}
		if err := s.documents.DeleteByProject(txCtx, id); err != nil {
			return err
		}
		return s.projects.Delete(txCtx, id)
	})
	if err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}

	s.logger.Info("project deleted", "project_id", id, "user_id", userID)
	return nil
}

// CreatePrompt saves a prompt snippet under a project.
func (s *Service) CreatePrompt(ctx context.Context, projectID string, req *services.CreatePromptRequest) (*models.Prompt, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Content, validation.Required),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	prompt := &models.Prompt{
		ProjectID: projectID,
		Title:     req.Title,
		Content:   req.Content,
	}
	if err := s.prompts.Create(ctx, prompt); err != nil {
		return nil, err
	}

	return prompt, nil
}

// ListPrompts returns a project's prompts.
func (s *Service) ListPrompts(ctx context.Context, projectID string) ([]models.Prompt, error) {
	return s.prompts.ListByProject(ctx, projectID)
}

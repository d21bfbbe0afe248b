package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
	"agentx/internal/domain/services"
)

// recorder tracks which cascade steps ran, in order.
type recorder struct {
	calls []string
}

func (r *recorder) record(name string) {
	r.calls = append(r.calls, name)
}

type fakeProjectRepo struct {
	rec      *recorder
	projects map[string]*models.Project
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	project.ID = fmt.Sprintf("project-%d", len(f.projects)+1)
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id, userID string) (*models.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.UserID != userID {
		return nil, &domain.NotFoundError{Message: "project not found"}
	}
	return p, nil
}

func (f *fakeProjectRepo) ListByUser(ctx context.Context, userID string) ([]models.Project, error) {
	var out []models.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id string) error {
	f.rec.record("project")
	delete(f.projects, id)
	return nil
}

type fakePromptRepo struct {
	rec *recorder
}

func (f *fakePromptRepo) Create(ctx context.Context, prompt *models.Prompt) error { return nil }
func (f *fakePromptRepo) ListByProject(ctx context.Context, projectID string) ([]models.Prompt, error) {
	return nil, nil
}
func (f *fakePromptRepo) DeleteByProject(ctx context.Context, projectID string) error {
	f.rec.record("prompts")
	return nil
}

type fakeDocRepo struct {
	rec *recorder
}

func (f *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error { return nil }
func (f *fakeDocRepo) ListByProject(ctx context.Context, projectID string) ([]models.Document, error) {
	return nil, nil
}
func (f *fakeDocRepo) ListInfoByProject(ctx context.Context, projectID string) ([]models.DocumentInfo, error) {
	return nil, nil
}
func (f *fakeDocRepo) Delete(ctx context.Context, id string) error { return nil }
func (f *fakeDocRepo) DeleteByProject(ctx context.Context, projectID string) error {
	f.rec.record("documents")
	return nil
}

type fakeTurnRepo struct {
	rec     *recorder
	failDel bool
}

func (f *fakeTurnRepo) Append(ctx context.Context, turn *models.Turn) error { return nil }
func (f *fakeTurnRepo) ListByProject(ctx context.Context, projectID string) ([]models.Turn, error) {
	return nil, nil
}
func (f *fakeTurnRepo) DeleteByProject(ctx context.Context, projectID string) error {
	if f.failDel {
		return errors.New("delete turns: store unavailable")
	}
	f.rec.record("turns")
	return nil
}

// fakeTxManager runs the function directly; rollback is simulated by the
// caller inspecting the recorder after a failure.
type fakeTxManager struct {
	ran bool
}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	f.ran = true
	return fn(ctx)
}

type fixture struct {
	svc      services.ProjectService
	projects *fakeProjectRepo
	turns    *fakeTurnRepo
	tx       *fakeTxManager
	rec      *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec := &recorder{}
	projects := &fakeProjectRepo{rec: rec, projects: make(map[string]*models.Project)}
	turns := &fakeTurnRepo{rec: rec}
	tx := &fakeTxManager{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(projects, &fakePromptRepo{rec: rec}, &fakeDocRepo{rec: rec}, turns, tx, logger)
	return &fixture{svc: svc, projects: projects, turns: turns, tx: tx, rec: rec}
}

func (f *fixture) createProject(t *testing.T, userID string) *models.Project {
	t.Helper()
	p, err := f.svc.CreateProject(context.Background(), &services.CreateProjectRequest{
		Name:   "research",
		UserID: userID,
	})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	return p
}

func TestCreateProject_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateProject(context.Background(), &services.CreateProjectRequest{UserID: "user-1"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteProject_CascadeOrder(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "user-1")

	if err := f.svc.DeleteProject(context.Background(), p.ID, "user-1"); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	if !f.tx.ran {
		t.Fatal("cascade delete did not run inside a transaction")
	}
	want := []string{"turns", "prompts", "documents", "project"}
	if len(f.rec.calls) != len(want) {
		t.Fatalf("expected calls %v, got %v", want, f.rec.calls)
	}
	for i, name := range want {
		if f.rec.calls[i] != name {
			t.Fatalf("expected calls %v, got %v", want, f.rec.calls)
		}
	}
}

func TestDeleteProject_WrongOwner(t *testing.T) {
	f := newFixture(t)
	p := f.createProject(t, "user-1")

	err := f.svc.DeleteProject(context.Background(), p.ID, "user-2")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign project, got %v", err)
	}
	if f.tx.ran {
		t.Error("cascade should not have started for a foreign project")
	}
	if len(f.rec.calls) != 0 {
		t.Errorf("expected no deletions, got %v", f.rec.calls)
	}
}

func TestDeleteProject_StepFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.turns.failDel = true
	p := f.createProject(t, "user-1")

	err := f.svc.DeleteProject(context.Background(), p.ID, "user-1")
	if err == nil {
		t.Fatal("expected error when a cascade step fails")
	}
	// Nothing after the failing step may have run.
	if len(f.rec.calls) != 0 {
		t.Errorf("expected cascade to stop at the first failure, got %v", f.rec.calls)
	}
}

func TestCreatePrompt_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePrompt(context.Background(), "project-1", &services.CreatePromptRequest{Title: "t"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"golang.org/x/crypto/bcrypt"

	authtoken "agentx/internal/auth"
	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/services"
)

// fakeUserRepo keys users by email.
type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	if _, exists := r.users[user.Email]; exists {
		return &domain.ConflictError{Message: "email already registered"}
	}
	user.ID = fmt.Sprintf("user-%d", len(r.users)+1)
	copied := *user
	r.users[user.Email] = &copied
	return nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func newTestService(t *testing.T, users *fakeUserRepo) (services.AuthService, *authtoken.TokenManager) {
	t.Helper()
	tokens, err := authtoken.NewTokenManager("test-secret")
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, tokens, logger), tokens
}

func registerRequest() *services.RegisterRequest {
	return &services.RegisterRequest{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "hunter22",
	}
}

func TestRegister_HashesPasswordAndIssuesToken(t *testing.T) {
	users := newFakeUserRepo()
	svc, tokens := newTestService(t, users)

	result, err := svc.Register(context.Background(), registerRequest())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	stored := users.users["ada@example.com"]
	if stored == nil {
		t.Fatal("user was not stored")
	}
	if stored.PasswordHash == "hunter22" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")); err != nil {
		t.Errorf("stored hash does not match the password: %v", err)
	}

	claims, err := tokens.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != result.User.ID {
		t.Errorf("token subject '%s' does not match user ID '%s'", claims.Subject, result.User.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	svc, _ := newTestService(t, users)

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}
	_, err := svc.Register(context.Background(), registerRequest())
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name string
		req  *services.RegisterRequest
	}{
		{"missing name", &services.RegisterRequest{Email: "a@b.com", Password: "hunter22"}},
		{"bad email", &services.RegisterRequest{Name: "Ada", Email: "not-an-email", Password: "hunter22"}},
		{"short password", &services.RegisterRequest{Name: "Ada", Email: "a@b.com", Password: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, newFakeUserRepo())

			_, err := svc.Register(context.Background(), tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	users := newFakeUserRepo()
	svc, tokens := newTestService(t, users)

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	result, err := svc.Login(context.Background(), &services.LoginRequest{
		Email:    "ada@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := tokens.Verify(result.Token); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc, _ := newTestService(t, users)

	if _, err := svc.Register(context.Background(), registerRequest()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name string
		req  *services.LoginRequest
	}{
		{"wrong password", &services.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"}},
		{"unknown email", &services.LoginRequest{Email: "nobody@example.com", Password: "hunter22"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tt.req)
			// Both cases collapse to the same error so callers cannot probe
			// which emails exist.
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

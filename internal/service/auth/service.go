package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"golang.org/x/crypto/bcrypt"

	"agentx/internal/auth"
	"agentx/internal/domain"
	"agentx/internal/domain/models"
	"agentx/internal/domain/repositories"
	"agentx/internal/domain/services"
)

// Service implements the AuthService interface: bcrypt-hashed credentials
// and HS256 session tokens.
type Service struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
	logger *slog.Logger
}

// NewService creates a new auth service
func NewService(users repositories.UserRepository, tokens *auth.TokenManager, logger *slog.Logger) services.AuthService {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates an account and returns a signed session token.
func (s *Service) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return &services.AuthResult{Token: token, User: user}, nil
}

// Login exchanges credentials for a session token. Unknown email and wrong
// password produce the same error so the response doesn't leak which one it
// was.
func (s *Service) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResult, error) {
	if err := validateLoginRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", domain.ErrValidation)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", domain.ErrValidation)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &services.AuthResult{Token: token, User: user}, nil
}

func validateRegisterRequest(req *services.RegisterRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.Length(6, 72)),
	)
}

func validateLoginRequest(req *services.LoginRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required),
		validation.Field(&req.Password, validation.Required),
	)
}

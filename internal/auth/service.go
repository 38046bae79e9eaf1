package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/finledger/finledger/internal/shared"
)

type Service struct {
	logger    *slog.Logger
	repo      Repository
	tokens    *TokenIssuer
	validator *shared.Validator
}

func NewService(logger *slog.Logger, repo Repository, tokens *TokenIssuer, validator *shared.Validator) *Service {
	return &Service{logger: logger, repo: repo, tokens: tokens, validator: validator}
}

// Register creates a staff account. The PIN is hashed before storage.
func (s *Service) Register(ctx context.Context, form RegisterForm) (Staff, error) {
	if err := s.validator.Struct(form); err != nil {
		return Staff{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.PIN), bcrypt.DefaultCost)
	if err != nil {
		return Staff{}, err
	}

	role := form.Role
	if role == "" {
		role = RoleStaff
	}
	return s.repo.Create(ctx, Staff{
		Name:    strings.TrimSpace(form.Name),
		Phone:   strings.TrimSpace(form.Phone),
		PINHash: string(hash),
		Role:    role,
		Status:  StatusActive,
	})
}

// ListStaff returns every staff account, active or not.
func (s *Service) ListStaff(ctx context.Context) ([]Staff, error) {
	return s.repo.List(ctx)
}

// Deactivate disables an account. Existing tokens stay valid until they
// expire, but the account can no longer log in.
func (s *Service) Deactivate(ctx context.Context, id int64) (Staff, error) {
	staff, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Staff{}, err
	}
	if err := s.repo.SetStatus(ctx, id, StatusDisabled); err != nil {
		return Staff{}, err
	}
	staff.Status = StatusDisabled
	s.logger.Info("staff deactivated", "staff_id", id)
	return staff, nil
}

// Login checks the phone and PIN and issues a token. Unknown phone, wrong
// PIN, and disabled account all return the same error so the response does
// not reveal which part failed.
func (s *Service) Login(ctx context.Context, form LoginForm) (LoginResult, error) {
	if err := s.validator.Struct(form); err != nil {
		return LoginResult{}, err
	}

	staff, err := s.repo.GetByPhone(ctx, strings.TrimSpace(form.Phone))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return LoginResult{}, shared.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}
	if staff.Status != StatusActive {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.PINHash), []byte(form.PIN)) != nil {
		s.logger.Warn("failed login attempt", "phone", staff.Phone)
		return LoginResult{}, shared.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(staff)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, Staff: staff}, nil
}

package parties

import (
	"context"
	"strings"

	"github.com/finledger/finledger/internal/shared"
)

type Service struct {
	repo      Repository
	validator *shared.Validator
}

func NewService(repo Repository, validator *shared.Validator) *Service {
	return &Service{repo: repo, validator: validator}
}

func (s *Service) List(ctx context.Context, kind Kind, filters ListFilters) ([]Party, int, error) {
	return s.repo.List(ctx, kind, filters)
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (Party, error) {
	if id <= 0 {
		return Party{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) Create(ctx context.Context, kind Kind, form PartyForm) (Party, error) {
	if err := s.validator.Struct(form); err != nil {
		return Party{}, err
	}
	return s.repo.Create(ctx, Party{
		Kind:        kind,
		DisplayName: strings.TrimSpace(form.DisplayName),
		Email:       strings.TrimSpace(form.Email),
		Phone:       strings.TrimSpace(form.Phone),
		TaxNumber:   strings.TrimSpace(form.TaxNumber),
		Address:     form.Address,
		Status:      StatusActive,
	})
}

func (s *Service) Update(ctx context.Context, kind Kind, id int64, form PartyForm) (Party, error) {
	if id <= 0 {
		return Party{}, shared.ErrNotFound
	}
	if err := s.validator.Struct(form); err != nil {
		return Party{}, err
	}

	existing, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return Party{}, err
	}

	existing.DisplayName = strings.TrimSpace(form.DisplayName)
	existing.Email = strings.TrimSpace(form.Email)
	existing.Phone = strings.TrimSpace(form.Phone)
	existing.TaxNumber = strings.TrimSpace(form.TaxNumber)
	existing.Address = form.Address
	return s.repo.Update(ctx, id, existing)
}

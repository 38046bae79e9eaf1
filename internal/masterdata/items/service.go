package items

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/finledger/finledger/internal/platform/cache"
	"github.com/finledger/finledger/internal/shared"
)

const (
	listCacheKey     = "items:list"
	listCacheTTL     = 5 * time.Minute
	listCachePerPage = 25
)

type Service struct {
	logger    *slog.Logger
	repo      Repository
	cache     *redis.Client
	validator *shared.Validator
}

func NewService(logger *slog.Logger, repo Repository, cacheClient *redis.Client, validator *shared.Validator) *Service {
	return &Service{logger: logger, repo: repo, cache: cacheClient, validator: validator}
}

type cachedList struct {
	Items []Item `json:"items"`
	Total int    `json:"total"`
}

// List returns the item catalog. The unfiltered first page at the default
// size is served from Redis when available; cache failures fall through to
// the database.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	cacheable := s.cache != nil && filters.Search == "" && filters.Page <= 1 && filters.PerPage == listCachePerPage

	if cacheable {
		var cached cachedList
		hit, err := cache.GetJSON(ctx, s.cache, listCacheKey, &cached)
		if err != nil {
			s.logger.Warn("item list cache read failed", "error", err)
		} else if hit {
			return cached.Items, cached.Total, nil
		}
	}

	out, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, listCacheKey, cachedList{Items: out, Total: total}, listCacheTTL); err != nil {
			s.logger.Warn("item list cache write failed", "error", err)
		}
	}
	return out, total, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, shared.ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, form ItemForm) (Item, error) {
	if err := s.validateForm(form); err != nil {
		return Item{}, err
	}

	created, err := s.repo.Create(ctx, itemFromForm(form))
	if err != nil {
		return Item{}, err
	}
	s.invalidate(ctx)
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, form ItemForm) (Item, error) {
	if id <= 0 {
		return Item{}, shared.ErrNotFound
	}
	if err := s.validateForm(form); err != nil {
		return Item{}, err
	}

	updated, err := s.repo.Update(ctx, id, itemFromForm(form))
	if err != nil {
		return Item{}, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *Service) validateForm(form ItemForm) error {
	if err := s.validator.Struct(form); err != nil {
		return err
	}
	var violations []string
	if form.UnitPrice.IsNegative() {
		violations = append(violations, "unit_price must not be negative")
	}
	if form.CostPrice.IsNegative() {
		violations = append(violations, "cost_price must not be negative")
	}
	return shared.NewValidationError(violations)
}

func itemFromForm(form ItemForm) Item {
	return Item{
		Name:         strings.TrimSpace(form.Name),
		SKU:          strings.TrimSpace(form.SKU),
		Description:  form.Description,
		UnitPrice:    form.UnitPrice,
		CostPrice:    form.CostPrice,
		UOM:          form.UOM,
		TrackStock:   form.TrackStock,
		CurrentStock: decimal.Zero,
		Status:       StatusActive,
	}
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, listCacheKey).Err(); err != nil {
		s.logger.Warn("item list cache invalidation failed", "error", err)
	}
}

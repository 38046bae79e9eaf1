package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/finledger/finledger/internal/masterdata/items"
)

// CatalogWarmupJob refreshes the cached item listing so dropdowns stay fast
// after the cache expires.
type CatalogWarmupJob struct {
	Items  *items.Service
	Logger *slog.Logger
}

func NewCatalogWarmupJob(itemsSvc *items.Service, logger *slog.Logger) *CatalogWarmupJob {
	return &CatalogWarmupJob{Items: itemsSvc, Logger: logger}
}

// Handle processes TaskCatalogWarmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Items == nil {
		return errors.New("catalog warmup: handler not configured")
	}

	// Listing the first page through the service repopulates the cache.
	_, total, err := j.Items.List(ctx, items.ListFilters{Page: 1, PerPage: 25})
	if err != nil {
		return err
	}
	j.Logger.Info("item catalog warmed", "total", total)
	return nil
}

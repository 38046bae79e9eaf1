package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/finledger/finledger/internal/billing"
)

// PDFPrerenderJob renders confirmed documents in the background so the first
// download does not wait on Gotenberg. The renderer caches by document id;
// rendering here means the download endpoint hits that cache.
type PDFPrerenderJob struct {
	Documents *billing.Service
	Renderer  billing.PDFRenderer
	Logger    *slog.Logger
}

func NewPDFPrerenderJob(documents *billing.Service, renderer billing.PDFRenderer, logger *slog.Logger) *PDFPrerenderJob {
	return &PDFPrerenderJob{Documents: documents, Renderer: renderer, Logger: logger}
}

// Handle processes TaskPDFPrerender tasks.
func (j *PDFPrerenderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Renderer == nil {
		return errors.New("pdf prerender: handler not configured")
	}
	var payload PDFPrerenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	doc, err := j.Documents.Get(ctx, payload.DocumentID)
	if err != nil {
		return err
	}
	if doc.Status != billing.StatusConfirmed {
		// Drafts change and voids are dead; neither is worth rendering.
		return asynq.SkipRetry
	}

	pdf, err := j.Renderer.Render(ctx, doc)
	if err != nil {
		return err
	}

	j.Logger.Info("document pdf pre-rendered", "number", doc.Number, "bytes", len(pdf))
	return nil
}

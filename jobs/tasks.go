// Package jobs runs background work: pre-rendering document PDFs and keeping
// the item catalog cache warm.
package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPDFPrerender renders a confirmed document to PDF ahead of the
	// first download request.
	TaskPDFPrerender = "pdf:prerender"
	// TaskCatalogWarmup refreshes the cached item listing.
	TaskCatalogWarmup = "catalog:warmup"
)

// PDFPrerenderPayload identifies the document to render.
type PDFPrerenderPayload struct {
	DocumentID int64 `json:"document_id"`
}

// NewPDFPrerenderTask constructs an Asynq task.
func NewPDFPrerenderTask(payload PDFPrerenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPDFPrerender, data), nil
}

// NewCatalogWarmupTask constructs an Asynq task with no payload.
func NewCatalogWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskCatalogWarmup, nil)
}

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePDFPrerender enqueues a render task for a confirmed document.
func (c *Client) EnqueuePDFPrerender(ctx context.Context, documentID int64) (*asynq.TaskInfo, error) {
	task, err := NewPDFPrerenderTask(PDFPrerenderPayload{DocumentID: documentID})
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}

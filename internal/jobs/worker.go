// Package jobs runs best-effort background work queued after a record is
// saved, currently category file archival. A job failure never affects
// the originating save; it is retried and eventually recorded on the job
// row.
package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yupi/agentcore/internal/archive"
	"github.com/yupi/agentcore/internal/record"
	"github.com/yupi/agentcore/internal/store"
)

// TypeArchiveRecord is the job type for archiving a record's text to the
// file storage service.
const TypeArchiveRecord = "archive_record"

// Queue abstracts the job queue operations the worker needs.
type Queue interface {
	EnqueueJob(job store.Job) error
	ClaimNextJob(types []string) (*store.Job, error)
	CompleteJob(id string) error
	FailJob(id string, errMsg string) error
}

// Archiver stores content as a category file.
type Archiver interface {
	SaveCategoryFile(ctx context.Context, category, content, title string) (archive.SavedFile, error)
}

type archivePayload struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// EnqueueArchive queues an archive job for a saved record.
func EnqueueArchive(q Queue, c record.Collection, doc record.Doc) error {
	payload, err := json.Marshal(archivePayload{
		Category: strings.ToUpper(string(c)),
		Title:    doc.Title,
		Content:  doc.Text(),
	})
	if err != nil {
		return fmt.Errorf("encoding archive payload: %w", err)
	}

	return q.EnqueueJob(store.Job{
		ID:          uuid.NewString(),
		Type:        TypeArchiveRecord,
		PayloadJSON: string(payload),
	})
}

// Worker processes archive_record jobs from the job queue.
type Worker struct {
	queue    Queue
	archiver Archiver
	poll     time.Duration
	logger   *slog.Logger
}

// NewWorker creates a Worker with the given dependencies.
// If pollInterval is <= 0, it defaults to 500ms.
func NewWorker(queue Queue, archiver Archiver, pollInterval time.Duration, logger *slog.Logger) *Worker {
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	return &Worker{
		queue:    queue,
		archiver: archiver,
		poll:     pollInterval,
		logger:   logger,
	}
}

// Run polls for jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		done, err := w.RunOnce(ctx)
		if err != nil {
			w.logger.Error("worker iteration failed", "error", err)
		}
		if done {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(w.poll):
		}
	}
}

// RunOnce claims and processes a single job. Returns true if a job was
// processed (regardless of success/failure).
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.queue.ClaimNextJob([]string{TypeArchiveRecord})
	if err != nil {
		return false, fmt.Errorf("claiming job: %w", err)
	}
	if job == nil {
		return false, nil
	}

	if err := w.processJob(ctx, job); err != nil {
		w.logger.Warn("archive job failed", "job_id", job.ID, "error", err)
		if failErr := w.queue.FailJob(job.ID, err.Error()); failErr != nil {
			w.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", failErr)
		}
		return true, nil
	}

	if err := w.queue.CompleteJob(job.ID); err != nil {
		return true, fmt.Errorf("completing job %s: %w", job.ID, err)
	}
	return true, nil
}

func (w *Worker) processJob(ctx context.Context, job *store.Job) error {
	var payload archivePayload
	if err := json.Unmarshal([]byte(job.PayloadJSON), &payload); err != nil {
		return fmt.Errorf("parsing payload: %w", err)
	}

	saved, err := w.archiver.SaveCategoryFile(ctx, payload.Category, payload.Content, payload.Title)
	if err != nil {
		return fmt.Errorf("archiving record: %w", err)
	}

	w.logger.Debug("record archived", "file_id", saved.FileID, "file_name", saved.FileName)
	return nil
}

// package engine is the HTTP client for the local download daemon, which
// owns the real queue and drives downloads. Everything here is a thin,
// rate-paced request layer; no queue state lives on this side.
package engine

import (
	"context"

	"github.com/desertthunder/grabbit/internal/models"
)

// Engine is the download daemon's queue API.
type Engine interface {
	// EnqueueSingle submits one track URL and returns the created job.
	EnqueueSingle(ctx context.Context, url string, service models.MusicService) (*models.DownloadJob, error)

	// EnqueueAlbum expands an album URL into per-track jobs.
	EnqueueAlbum(ctx context.Context, url string, service models.MusicService) ([]models.DownloadJob, error)

	// EnqueuePlaylist expands a playlist URL into per-track jobs.
	EnqueuePlaylist(ctx context.Context, url string, service models.MusicService) ([]models.DownloadJob, error)

	// RemoveJob removes a job by id. Removing an unknown id is not an error.
	RemoveJob(ctx context.Context, id string) error

	// ClearCompleted drops all terminal jobs from the queue.
	ClearCompleted(ctx context.Context) error

	// StartProcessing asks the daemon to begin working the queue. Calling it
	// while processing is already running is a no-op on the daemon side.
	StartProcessing(ctx context.Context) error

	// Snapshot fetches the daemon's current view of the whole queue.
	Snapshot(ctx context.Context) (*models.QueueSnapshot, error)

	// NormalizeLink asks the daemon to canonicalize a pasted or dropped link.
	NormalizeLink(ctx context.Context, raw string) (string, error)
}

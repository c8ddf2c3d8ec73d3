package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/urfave/cli/v3"
)

// QueueAdd classifies and queues a link, then prints the updated queue.
func (r *Runner) QueueAdd(ctx context.Context, cmd *cli.Command) error {
	url := cmd.StringArg("url")
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	if err := r.mirror.Enqueue(ctx, url); err != nil {
		return err
	}

	snapshot := r.mirror.Snapshot()
	return r.writePlain("✓ Queued. %d job(s) waiting, %d active.\n",
		snapshot.QueuedCount, snapshot.ActiveCount)
}

// QueueList prints the daemon's current queue.
func (r *Runner) QueueList(ctx context.Context, cmd *cli.Command) error {
	if err := r.mirror.Refresh(ctx); err != nil {
		return err
	}
	snapshot := r.mirror.Snapshot()

	if cmd.Bool("json") {
		return r.writeJSON(snapshot, cmd.Bool("pretty"))
	}

	if len(snapshot.Jobs) == 0 {
		return r.writePlain("Queue is empty.\n")
	}

	for _, job := range snapshot.Jobs {
		line := fmt.Sprintf("%-10s %s", job.Status, job.DisplayTitle())
		if job.Status.IsActive() {
			line = fmt.Sprintf("%s (%.0f%%)", line, job.Progress)
		}
		if job.Status == models.StatusError && job.Err != "" {
			line = fmt.Sprintf("%s: %s", line, job.Err)
		}
		r.writePlain("%s  [%s]\n", line, job.ID)
	}

	return r.writePlain("\n%d active • %d queued • %d done • %d failed\n",
		snapshot.ActiveCount, snapshot.QueuedCount, snapshot.CompletedCount, snapshot.ErrorCount)
}

// QueueRemove removes one job by id.
func (r *Runner) QueueRemove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: id", shared.ErrMissingArgument)
	}

	if err := r.mirror.RemoveJob(ctx, id); err != nil {
		return err
	}

	return r.writePlain("✓ Removed %s\n", id)
}

// QueueClear clears finished jobs, or the whole queue with --all.
func (r *Runner) QueueClear(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("all") {
		if err := r.mirror.ClearAll(ctx); err != nil {
			return err
		}
		return r.writePlain("✓ Queue cleared\n")
	}

	if err := r.mirror.ClearCompleted(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Finished jobs cleared\n")
}

// QueueStart asks the daemon to begin working the queue.
func (r *Runner) QueueStart(ctx context.Context, cmd *cli.Command) error {
	if err := r.mirror.StartProcessing(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Processing started\n")
}

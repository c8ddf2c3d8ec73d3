// package queue mirrors the daemon's download queue for the UI surfaces.
// The daemon owns the queue; the mirror only submits work, replaces its
// snapshot wholesale when the daemon pushes a new one, and notifies local
// subscribers.
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/classify"
	"github.com/desertthunder/grabbit/internal/engine"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

// LicenseGate answers whether downloads are currently allowed.
// [auth.Manager] satisfies it.
type LicenseGate interface {
	LicenseValid() bool
}

// Mirror is the client-side view of the daemon queue.
type Mirror struct {
	engine engine.Engine
	gate   LicenseGate
	logger *log.Logger

	mu          sync.Mutex
	snapshot    models.QueueSnapshot
	hasSnapshot bool
	nextSub     int
	subs        map[int]func(models.QueueSnapshot)
}

func NewMirror(eng engine.Engine, gate LicenseGate, logger *log.Logger) *Mirror {
	return &Mirror{
		engine: eng,
		gate:   gate,
		logger: logger,
		subs:   make(map[int]func(models.QueueSnapshot)),
	}
}

// Enqueue classifies input, submits it to the daemon, kicks off processing,
// and refreshes the snapshot. Album and playlist links fan out into
// per-track jobs on the daemon side. Submitting without a valid license
// fails with [shared.ErrLicenseInvalid] before any daemon call.
func (m *Mirror) Enqueue(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return fmt.Errorf("%w: empty link", shared.ErrInvalidInput)
	}

	if !m.gate.LicenseValid() {
		return shared.ErrLicenseInvalid
	}

	result := classify.Classify(input)

	var err error
	switch {
	case result.IsCollection && classify.IsPlaylist(input, result.Service):
		_, err = m.engine.EnqueuePlaylist(ctx, input, result.Service)
	case result.IsCollection:
		_, err = m.engine.EnqueueAlbum(ctx, input, result.Service)
	default:
		_, err = m.engine.EnqueueSingle(ctx, input, result.Service)
	}
	if err != nil {
		return err
	}

	m.logger.Info("queued link", "service", result.Service, "collection", result.IsCollection)

	if err := m.engine.StartProcessing(ctx); err != nil {
		return err
	}

	return m.Refresh(ctx)
}

// RemoveJob removes one job and refreshes. Removing an id the daemon no
// longer knows is not an error.
func (m *Mirror) RemoveJob(ctx context.Context, id string) error {
	if err := m.engine.RemoveJob(ctx, id); err != nil {
		return err
	}

	return m.Refresh(ctx)
}

// ClearCompleted drops all terminal jobs and refreshes.
func (m *Mirror) ClearCompleted(ctx context.Context) error {
	if err := m.engine.ClearCompleted(ctx); err != nil {
		return err
	}

	return m.Refresh(ctx)
}

// ClearAll removes every job currently in the mirror, one at a time. Each
// removal is independent: a failure is collected and the rest proceed, so a
// single stuck job cannot wedge the sweep. The snapshot is refreshed once
// at the end regardless.
func (m *Mirror) ClearAll(ctx context.Context) error {
	m.mu.Lock()
	ids := m.snapshot.JobIDs()
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if err := m.engine.RemoveJob(ctx, id); err != nil {
			m.logger.Warn("could not remove job", "id", id, "error", err)
			errs = append(errs, fmt.Errorf("job %s: %w", id, err))
		}
	}

	if err := m.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// StartProcessing asks the daemon to work the queue. Gated on the license
// like Enqueue; the daemon treats repeat calls as no-ops.
func (m *Mirror) StartProcessing(ctx context.Context) error {
	if !m.gate.LicenseValid() {
		return shared.ErrLicenseInvalid
	}

	if err := m.engine.StartProcessing(ctx); err != nil {
		return err
	}

	return m.Refresh(ctx)
}

// Refresh pulls the daemon's current snapshot and applies it.
func (m *Mirror) Refresh(ctx context.Context) error {
	snapshot, err := m.engine.Snapshot(ctx)
	if err != nil {
		return err
	}

	m.ApplyPush(*snapshot)
	return nil
}

// ApplyPush replaces the mirrored snapshot wholesale. Pushed and pulled
// snapshots go through the same door, so the newest writer wins and no
// per-job merging ever happens.
func (m *Mirror) ApplyPush(snapshot models.QueueSnapshot) {
	m.mu.Lock()
	m.snapshot = snapshot
	m.hasSnapshot = true
	fns := make([]func(models.QueueSnapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(m.Snapshot())
	}
}

// HasSnapshot reports whether any snapshot has been applied yet, letting
// surfaces tell an empty queue apart from a daemon they have never heard from.
func (m *Mirror) HasSnapshot() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasSnapshot
}

// Snapshot returns a copy of the current mirror state. The jobs slice is
// copied so callers can hold it across later pushes.
func (m *Mirror) Snapshot() models.QueueSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := m.snapshot
	copied.Jobs = make([]models.DownloadJob, len(m.snapshot.Jobs))
	copy(copied.Jobs, m.snapshot.Jobs)

	return copied
}

// Subscription is a handle on a snapshot-change registration.
type Subscription struct {
	id     int
	mirror *Mirror
}

func (s *Subscription) Unsubscribe() {
	s.mirror.mu.Lock()
	defer s.mirror.mu.Unlock()
	delete(s.mirror.subs, s.id)
}

// Subscribe registers fn to run after every snapshot replacement. Callbacks
// run on the goroutine that applied the push and must not block.
func (m *Mirror) Subscribe(fn func(models.QueueSnapshot)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSub++
	id := m.nextSub
	m.subs[id] = fn

	return &Subscription{id: id, mirror: m}
}

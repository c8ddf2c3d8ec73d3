package drop

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/queue"
	"github.com/desertthunder/grabbit/internal/shared"
)

type fakeEngine struct {
	enqueued     []string
	albums       []string
	normalized   map[string]string
	normalizeErr error
}

func (f *fakeEngine) EnqueueSingle(ctx context.Context, url string, service models.MusicService) (*models.DownloadJob, error) {
	f.enqueued = append(f.enqueued, url)
	return &models.DownloadJob{ID: "job-1", URL: url}, nil
}

func (f *fakeEngine) EnqueueAlbum(ctx context.Context, url string, service models.MusicService) ([]models.DownloadJob, error) {
	f.albums = append(f.albums, url)
	return nil, nil
}

func (f *fakeEngine) EnqueuePlaylist(ctx context.Context, url string, service models.MusicService) ([]models.DownloadJob, error) {
	f.enqueued = append(f.enqueued, url)
	return nil, nil
}

func (f *fakeEngine) RemoveJob(ctx context.Context, id string) error { return nil }

func (f *fakeEngine) ClearCompleted(ctx context.Context) error { return nil }

func (f *fakeEngine) StartProcessing(ctx context.Context) error { return nil }

func (f *fakeEngine) Snapshot(ctx context.Context) (*models.QueueSnapshot, error) {
	return &models.QueueSnapshot{}, nil
}

func (f *fakeEngine) NormalizeLink(ctx context.Context, raw string) (string, error) {
	if f.normalizeErr != nil {
		return "", f.normalizeErr
	}
	if canonical, ok := f.normalized[raw]; ok {
		return canonical, nil
	}
	return raw, nil
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) ReadAll() (string, error) {
	return f.text, f.err
}

type openGate struct{}

func (openGate) LicenseValid() bool { return true }

func newTestBridge(eng *fakeEngine, clip Clipboard) *Bridge {
	logger := shared.NewLogger(io.Discard)
	mirror := queue.NewMirror(eng, openGate{}, logger)
	return NewBridge(mirror, eng, clip, logger)
}

func TestBridgeOnDropPayload(t *testing.T) {
	t.Run("Plain URL", func(t *testing.T) {
		eng := &fakeEngine{}
		b := newTestBridge(eng, &fakeClipboard{})

		err := b.OnDropPayload(context.Background(), "https://open.spotify.com/track/abc")
		if err != nil {
			t.Fatalf("drop failed: %v", err)
		}
		if len(eng.enqueued) != 1 || eng.enqueued[0] != "https://open.spotify.com/track/abc" {
			t.Errorf("unexpected enqueues %v", eng.enqueued)
		}
	})

	t.Run("URI List With Comments", func(t *testing.T) {
		eng := &fakeEngine{}
		b := newTestBridge(eng, &fakeClipboard{})

		payload := "# dragged from browser\r\nhttps://music.youtube.com/watch?v=abc123\r\nhttps://example.com/second"
		if err := b.OnDropPayload(context.Background(), payload); err != nil {
			t.Fatalf("drop failed: %v", err)
		}
		if len(eng.enqueued) != 1 || eng.enqueued[0] != "https://music.youtube.com/watch?v=abc123" {
			t.Errorf("expected only the first link, got %v", eng.enqueued)
		}
	})

	t.Run("Spotify URI Is Normalized", func(t *testing.T) {
		eng := &fakeEngine{normalized: map[string]string{
			"spotify:track:abc": "https://open.spotify.com/track/abc",
		}}
		b := newTestBridge(eng, &fakeClipboard{})

		if err := b.OnDropPayload(context.Background(), "spotify:track:abc"); err != nil {
			t.Fatalf("drop failed: %v", err)
		}
		if eng.enqueued[0] != "https://open.spotify.com/track/abc" {
			t.Errorf("expected the canonical link, got %q", eng.enqueued[0])
		}
	})

	t.Run("Normalize Failure Falls Back To Raw Link", func(t *testing.T) {
		eng := &fakeEngine{normalizeErr: shared.ErrEngineUnavailable}
		b := newTestBridge(eng, &fakeClipboard{})

		// enqueue still goes through the mirror, which will reach the daemon
		if err := b.OnDropPayload(context.Background(), "https://open.spotify.com/track/abc"); err != nil {
			t.Fatalf("drop failed: %v", err)
		}
		if len(eng.enqueued) != 1 || eng.enqueued[0] != "https://open.spotify.com/track/abc" {
			t.Errorf("expected the raw link, got %v", eng.enqueued)
		}
	})

	t.Run("Album URI Goes Through The Album Endpoint", func(t *testing.T) {
		eng := &fakeEngine{}
		b := newTestBridge(eng, &fakeClipboard{})

		if err := b.OnDropPayload(context.Background(), "spotify:album:abc"); err != nil {
			t.Fatalf("drop failed: %v", err)
		}
		if len(eng.albums) != 1 || eng.albums[0] != "spotify:album:abc" {
			t.Errorf("expected one album enqueue, got %v", eng.albums)
		}
		if len(eng.enqueued) != 0 {
			t.Errorf("expected no single-track enqueue, got %v", eng.enqueued)
		}
	})

	t.Run("No Usable Link", func(t *testing.T) {
		b := newTestBridge(&fakeEngine{}, &fakeClipboard{})

		for _, payload := range []string{"", "just some words", "# only a comment", "ftp://example.com/file"} {
			err := b.OnDropPayload(context.Background(), payload)
			if !errors.Is(err, shared.ErrInvalidDrop) {
				t.Errorf("expected ErrInvalidDrop for %q, got %v", payload, err)
			}
		}
	})
}

func TestBridgeTap(t *testing.T) {
	t.Run("Clipboard Link", func(t *testing.T) {
		eng := &fakeEngine{}
		b := newTestBridge(eng, &fakeClipboard{text: "https://open.spotify.com/track/abc"})

		if err := b.Tap(context.Background()); err != nil {
			t.Fatalf("tap failed: %v", err)
		}
		if len(eng.enqueued) != 1 {
			t.Errorf("expected one enqueue, got %v", eng.enqueued)
		}
	})

	t.Run("Clipboard Without Link", func(t *testing.T) {
		b := newTestBridge(&fakeEngine{}, &fakeClipboard{text: "a grocery list"})

		err := b.Tap(context.Background())
		if !errors.Is(err, shared.ErrManualEntry) {
			t.Errorf("expected ErrManualEntry, got %v", err)
		}
	})

	t.Run("Clipboard Unavailable", func(t *testing.T) {
		b := newTestBridge(&fakeEngine{}, &fakeClipboard{err: errors.New("no clipboard")})

		err := b.Tap(context.Background())
		if !errors.Is(err, shared.ErrManualEntry) {
			t.Errorf("expected ErrManualEntry, got %v", err)
		}
	})
}

func TestBridgeDragState(t *testing.T) {
	b := newTestBridge(&fakeEngine{}, &fakeClipboard{})

	if b.Dragging() {
		t.Error("a new bridge must not report a drag")
	}

	b.BeginDrag()
	if !b.Dragging() {
		t.Error("expected dragging after BeginDrag")
	}

	b.EndDrag()
	if b.Dragging() {
		t.Error("expected no drag after EndDrag")
	}
}

// package drop turns drag-and-drop payloads, pasted text, and clipboard
// contents into queue submissions. Every path funnels through the same
// enqueue call so a dropped link and a typed one behave identically.
package drop

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/engine"
	"github.com/desertthunder/grabbit/internal/queue"
	"github.com/desertthunder/grabbit/internal/shared"
)

// Bridge receives link payloads from the platform layer and forwards them
// to the queue mirror.
type Bridge struct {
	mirror    *queue.Mirror
	engine    engine.Engine
	clipboard Clipboard
	logger    *log.Logger

	mu       sync.Mutex
	dragging bool
}

func NewBridge(mirror *queue.Mirror, eng engine.Engine, clipboard Clipboard, logger *log.Logger) *Bridge {
	return &Bridge{
		mirror:    mirror,
		engine:    eng,
		clipboard: clipboard,
		logger:    logger,
	}
}

// OnDropPayload handles one drop. The payload may be a text/uri-list body
// or plain text; the first usable link wins and the rest is ignored. The
// link is canonicalized by the daemon when possible and submitted through
// the shared enqueue path. Payloads with no usable link fail with
// [shared.ErrInvalidDrop].
func (b *Bridge) OnDropPayload(ctx context.Context, payload string) error {
	link, ok := extractLink(payload)
	if !ok {
		return fmt.Errorf("%w: no usable link in payload", shared.ErrInvalidDrop)
	}

	return b.submit(ctx, link)
}

// Tap is the clipboard fallback for platforms where native drop payloads
// never arrive. It reads the clipboard and enqueues a link from it; when
// the clipboard holds nothing usable it fails with [shared.ErrManualEntry]
// so the surface can open its manual entry field instead.
func (b *Bridge) Tap(ctx context.Context) error {
	text, err := b.clipboard.ReadAll()
	if err != nil {
		b.logger.Debug("clipboard unavailable", "error", err)
		return shared.ErrManualEntry
	}

	link, ok := extractLink(text)
	if !ok {
		return shared.ErrManualEntry
	}

	return b.submit(ctx, link)
}

// BeginDrag marks a drag as hovering over the drop zone.
func (b *Bridge) BeginDrag() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragging = true
}

// EndDrag clears the hover mark, whether the drag landed or left.
func (b *Bridge) EndDrag() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dragging = false
}

// Dragging reports whether a drag is currently over the drop zone.
func (b *Bridge) Dragging() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dragging
}

func (b *Bridge) submit(ctx context.Context, link string) error {
	normalized, err := b.engine.NormalizeLink(ctx, link)
	if err != nil || normalized == "" {
		// the raw link is still worth trying when the daemon cannot help
		b.logger.Debug("could not normalize link, using it as dropped", "link", link, "error", err)
		normalized = link
	}

	return b.mirror.Enqueue(ctx, normalized)
}

// extractLink scans payload lines for the first usable link. Lines starting
// with '#' are text/uri-list comments.
func extractLink(payload string) (string, bool) {
	for _, line := range strings.Split(payload, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if isLink(line) {
			return line, true
		}
	}

	return "", false
}

func isLink(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "spotify:")
}

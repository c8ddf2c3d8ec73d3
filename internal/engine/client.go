package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
	"golang.org/x/time/rate"
)

// HTTPEngine implements [Engine] over the daemon's HTTP API. Requests are
// paced with a token bucket so bulk operations cannot hammer the daemon.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *log.Logger
}

func NewHTTPEngine(cfg *shared.Config, logger *log.Logger) *HTTPEngine {
	rps := cfg.Engine.RequestsPerSecond
	if rps <= 0 {
		rps = 4
	}

	return &HTTPEngine{
		baseURL: cfg.Engine.BaseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		logger:  logger,
	}
}

type enqueueRequest struct {
	URL     string `json:"url"`
	Service string `json:"service"`
}

type enqueueBatchResponse struct {
	Jobs []models.DownloadJob `json:"jobs"`
}

type normalizeRequest struct {
	URL string `json:"url"`
}

type normalizeResponse struct {
	URL string `json:"url"`
}

func (e *HTTPEngine) EnqueueSingle(ctx context.Context, rawURL string, service models.MusicService) (*models.DownloadJob, error) {
	var job models.DownloadJob
	err := e.call(ctx, http.MethodPost, "/queue", enqueueRequest{URL: rawURL, Service: string(service)}, &job)
	if err != nil {
		return nil, err
	}

	return &job, nil
}

func (e *HTTPEngine) EnqueueAlbum(ctx context.Context, rawURL string, service models.MusicService) ([]models.DownloadJob, error) {
	var resp enqueueBatchResponse
	err := e.call(ctx, http.MethodPost, "/queue/album", enqueueRequest{URL: rawURL, Service: string(service)}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Jobs, nil
}

func (e *HTTPEngine) EnqueuePlaylist(ctx context.Context, rawURL string, service models.MusicService) ([]models.DownloadJob, error) {
	var resp enqueueBatchResponse
	err := e.call(ctx, http.MethodPost, "/queue/playlist", enqueueRequest{URL: rawURL, Service: string(service)}, &resp)
	if err != nil {
		return nil, err
	}

	return resp.Jobs, nil
}

func (e *HTTPEngine) RemoveJob(ctx context.Context, id string) error {
	return e.call(ctx, http.MethodDelete, "/queue/"+url.PathEscape(id), nil, nil)
}

func (e *HTTPEngine) ClearCompleted(ctx context.Context) error {
	return e.call(ctx, http.MethodPost, "/queue/clear-completed", nil, nil)
}

func (e *HTTPEngine) StartProcessing(ctx context.Context) error {
	return e.call(ctx, http.MethodPost, "/queue/start", nil, nil)
}

func (e *HTTPEngine) Snapshot(ctx context.Context) (*models.QueueSnapshot, error) {
	var snapshot models.QueueSnapshot
	if err := e.call(ctx, http.MethodGet, "/queue", nil, &snapshot); err != nil {
		return nil, err
	}

	return &snapshot, nil
}

func (e *HTTPEngine) NormalizeLink(ctx context.Context, raw string) (string, error) {
	var resp normalizeResponse
	err := e.call(ctx, http.MethodPost, "/links/normalize", normalizeRequest{URL: raw}, &resp)
	if err != nil {
		return "", err
	}

	return resp.URL, nil
}

// call performs one paced round trip. Transport failures and daemon error
// responses both wrap [shared.ErrEngineUnavailable] so callers can treat
// "daemon not running" uniformly.
func (e *HTTPEngine) call(ctx context.Context, method, path string, body, out any) error {
	if err := e.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrEngineUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Debug("daemon request failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("%w: %v", shared.ErrEngineUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s",
			shared.ErrEngineUnavailable, method, path, resp.StatusCode, bytes.TrimSpace(detail))
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", shared.ErrEngineUnavailable, path, err)
	}

	return nil
}

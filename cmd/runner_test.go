package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/grabbit/internal/auth"
	"github.com/desertthunder/grabbit/internal/engine"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/urfave/cli/v3"
)

type stubOAuth struct{}

func (stubOAuth) StartLogin() (string, string, error) {
	return "https://auth.example.com/consent", "state", nil
}

func (stubOAuth) AwaitCallback(ctx context.Context) (string, error) { return "code", nil }

func (stubOAuth) CancelLogin() {}

func (stubOAuth) ExchangeCode(ctx context.Context, code string) (*models.Session, error) {
	return &models.Session{
		Email:     "user@example.com",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil
}

func (stubOAuth) RefreshToken(ctx context.Context, s *models.Session) (*models.Session, error) {
	return s, nil
}

type stubLicenses struct {
	status models.LicenseStatus
}

func (s stubLicenses) CheckLicense(ctx context.Context, email string) models.LicenseStatus {
	return s.status
}

func (stubLicenses) DeviceUUID() string { return "device-uuid-1" }

func (stubLicenses) RegistrationURL() string { return "https://account.example.com/subscriptions" }

// newTestRunner wires a runner against a stub daemon and an in-memory store.
func newTestRunner(t *testing.T, daemon http.Handler, licensed bool) (*Runner, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(daemon)
	t.Cleanup(srv.Close)

	config := shared.DefaultConfig()
	config.Engine.BaseURL = srv.URL
	config.Engine.RequestsPerSecond = 100

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	logger := shared.NewLogger(io.Discard)
	session := auth.NewManager(
		auth.NewSQLiteStore(db), stubOAuth{},
		stubLicenses{status: models.LicenseStatus{IsValid: licensed, Status: models.LicenseActive}},
		func(string) error { return nil }, logger,
	)
	session.Initialize(context.Background())

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:  config,
		DB:      db,
		Session: session,
		Engine:  engine.NewHTTPEngine(config, logger),
		Logger:  logger,
		Output:  output,
	})

	return runner, output
}

// runCommand executes one CLI invocation against the runner's command tree.
func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	app := &cli.Command{Name: "grabbit", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"grabbit"}, args...))
}

func stubDaemon() http.Handler {
	mux := http.NewServeMux()
	jobs := []models.DownloadJob{}

	mux.HandleFunc("POST /queue", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			URL string `json:"url"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		job := models.DownloadJob{ID: "job-1", URL: req.URL, Status: models.StatusQueued}
		jobs = append(jobs, job)
		json.NewEncoder(w).Encode(job)
	})
	mux.HandleFunc("POST /queue/start", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /queue", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.QueueSnapshot{Jobs: jobs, QueuedCount: len(jobs)})
	})
	mux.HandleFunc("DELETE /queue/{id}", func(w http.ResponseWriter, r *http.Request) {
		jobs = nil
		w.WriteHeader(http.StatusNoContent)
	})

	return mux
}

func TestQueueCommands(t *testing.T) {
	t.Run("Add Then List", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "queue", "add", "https://open.spotify.com/track/abc"); err != nil {
			t.Fatalf("queue add failed: %v", err)
		}
		if !strings.Contains(output.String(), "Queued") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := runCommand(t, runner, "queue", "list"); err != nil {
			t.Fatalf("queue list failed: %v", err)
		}
		if !strings.Contains(output.String(), "track/abc") {
			t.Errorf("expected the queued job in output, got %q", output.String())
		}
	})

	t.Run("Add Without License", func(t *testing.T) {
		runner, _ := newTestRunner(t, stubDaemon(), false)

		err := runCommand(t, runner, "queue", "add", "https://open.spotify.com/track/abc")
		if !errors.Is(err, shared.ErrLicenseInvalid) {
			t.Fatalf("expected ErrLicenseInvalid, got %v", err)
		}
	})

	t.Run("Add Without URL", func(t *testing.T) {
		runner, _ := newTestRunner(t, stubDaemon(), true)

		err := runCommand(t, runner, "queue", "add")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("List Empty Queue", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "queue", "list"); err != nil {
			t.Fatalf("queue list failed: %v", err)
		}
		if !strings.Contains(output.String(), "empty") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("List JSON", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "queue", "list", "--json"); err != nil {
			t.Fatalf("queue list failed: %v", err)
		}

		var snapshot models.QueueSnapshot
		if err := json.Unmarshal(output.Bytes(), &snapshot); err != nil {
			t.Errorf("expected valid JSON, got %q: %v", output.String(), err)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	t.Run("Status When Signed Out", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Signed out") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("Login Then Status", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "auth", "login"); err != nil {
			t.Fatalf("auth login failed: %v", err)
		}
		if !strings.Contains(output.String(), "user@example.com") {
			t.Errorf("unexpected output %q", output.String())
		}

		output.Reset()
		if err := runCommand(t, runner, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Signed in as user@example.com") {
			t.Errorf("unexpected output %q", output.String())
		}
	})

	t.Run("License Verdict", func(t *testing.T) {
		runner, output := newTestRunner(t, stubDaemon(), true)

		if err := runCommand(t, runner, "auth", "license"); err != nil {
			t.Fatalf("auth license failed: %v", err)
		}
		if !strings.Contains(output.String(), "active") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})

	if runner.config == nil {
		t.Error("expected default config to be set")
	}
	if runner.logger == nil {
		t.Error("expected default logger to be set")
	}
	if runner.output == nil {
		t.Error("expected default output to be set")
	}
}

package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

func newTestLicenseService(baseURL string) *LicenseService {
	cfg := shared.DefaultConfig()
	cfg.License.BaseURL = baseURL
	cfg.License.RegistrationBaseURL = "https://account.example.com/subscriptions"
	cfg.License.ServiceID = "grabbit-downloader"

	return NewLicenseService(cfg, "device-uuid-1", shared.NewLogger(io.Discard))
}

func TestLicenseService(t *testing.T) {
	t.Run("Active Subscription", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("email"); got != "user@example.com" {
				t.Errorf("expected email query param, got %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `{
				"email": "user@example.com",
				"services": {
					"grabbit-downloader": {"status": "active", "expiresAt": {"_seconds": 1767139200}}
				}
			}`)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if !status.IsValid {
			t.Error("expected a valid license")
		}
		if status.Status != models.LicenseActive {
			t.Errorf("expected active, got %q", status.Status)
		}
		if status.ExpiresAt != "2025-12-31" {
			t.Errorf("unexpected expiry date %q", status.ExpiresAt)
		}
	})

	t.Run("Expired Subscription", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"services": {"grabbit-downloader": {"status": "expired"}}}`)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if status.IsValid {
			t.Error("expired license must not be valid")
		}
		if status.Status != models.LicenseExpired {
			t.Errorf("expected expired, got %q", status.Status)
		}
	})

	t.Run("Cancelled Maps To Suspended", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"services": {"grabbit-downloader": {"status": "cancelled"}}}`)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if status.Status != models.LicenseSuspended {
			t.Errorf("expected suspended, got %q", status.Status)
		}
	})

	t.Run("Unknown Account Is Not Registered", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "not found", http.StatusNotFound)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if status.Status != models.LicenseNotRegistered {
			t.Errorf("expected not_registered, got %q", status.Status)
		}
		if !strings.Contains(status.RegistrationURL, "device_uuid=device-uuid-1") {
			t.Errorf("registration url missing device uuid: %q", status.RegistrationURL)
		}
	})

	t.Run("Service Missing From Account", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"services": {"some-other-app": {"status": "active"}}}`)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if status.Status != models.LicenseNotRegistered {
			t.Errorf("expected not_registered, got %q", status.Status)
		}
	})

	t.Run("Anonymous Check", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "")

		if calls != 0 {
			t.Errorf("anonymous check should not hit the API, saw %d calls", calls)
		}
		if status.Status != models.LicenseNotRegistered {
			t.Errorf("expected not_registered, got %q", status.Status)
		}
		if status.DeviceUUID != "device-uuid-1" {
			t.Errorf("unexpected device uuid %q", status.DeviceUUID)
		}
	})

	t.Run("Unreachable Service Degrades", func(t *testing.T) {
		status := newTestLicenseService("http://127.0.0.1:1").CheckLicense(context.Background(), "user@example.com")

		if status.Status != models.LicenseError {
			t.Errorf("expected error status, got %q", status.Status)
		}
		if status.IsValid {
			t.Error("degraded status must not be valid")
		}
		if status.Err == "" {
			t.Error("expected a diagnostic message")
		}
	})

	t.Run("Server Error Degrades", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		status := newTestLicenseService(srv.URL).CheckLicense(context.Background(), "user@example.com")

		if status.Status != models.LicenseError {
			t.Errorf("expected error status, got %q", status.Status)
		}
	})
}

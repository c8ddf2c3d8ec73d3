package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/models"
	"github.com/desertthunder/grabbit/internal/shared"
)

// LicenseService implements [LicenseClient] against the subscription API.
type LicenseService struct {
	baseURL         string
	registrationURL string
	serviceID       string
	deviceUUID      string
	client          *http.Client
	logger          *log.Logger
}

func NewLicenseService(cfg *shared.Config, deviceUUID string, logger *log.Logger) *LicenseService {
	return &LicenseService{
		baseURL:         cfg.License.BaseURL,
		registrationURL: cfg.License.RegistrationBaseURL,
		serviceID:       cfg.License.ServiceID,
		deviceUUID:      deviceUUID,
		client:          &http.Client{Timeout: 15 * time.Second},
		logger:          logger,
	}
}

func (l *LicenseService) DeviceUUID() string {
	return l.deviceUUID
}

func (l *LicenseService) RegistrationURL() string {
	return fmt.Sprintf("%s?device_uuid=%s", l.registrationURL, url.QueryEscape(l.deviceUUID))
}

// subscriptionResponse mirrors the subscription API payload. Timestamps
// arrive as Firestore-style {_seconds, _nanoseconds} objects.
type subscriptionResponse struct {
	Email    string                        `json:"email"`
	Services map[string]subscriptionRecord `json:"services"`
}

type subscriptionRecord struct {
	Status    string        `json:"status"`
	ExpiresAt *apiTimestamp `json:"expiresAt"`
}

type apiTimestamp struct {
	Seconds int64 `json:"_seconds"`
}

// CheckLicense queries the subscription status for email. An empty email is
// the anonymous device-only check, which resolves locally to not-registered
// with a registration link. Transport and server failures degrade to a
// status of [models.LicenseError] so callers never have to branch on errors.
func (l *LicenseService) CheckLicense(ctx context.Context, email string) models.LicenseStatus {
	if email == "" {
		return l.notRegistered("")
	}

	endpoint := fmt.Sprintf("%s/user/subscription-status?email=%s", l.baseURL, url.QueryEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return l.degraded(email, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.Warn("license check unreachable", "error", err)
		return l.degraded(email, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound:
		return l.notRegistered(email)
	case resp.StatusCode != http.StatusOK:
		return l.degraded(email, fmt.Errorf("subscription API returned %d", resp.StatusCode))
	}

	var payload subscriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return l.degraded(email, err)
	}

	record, ok := payload.Services[l.serviceID]
	if !ok {
		return l.notRegistered(email)
	}

	status := models.LicenseStatus{
		Status:          statusFromRecord(record.Status),
		DeviceUUID:      l.deviceUUID,
		Email:           email,
		RegistrationURL: l.RegistrationURL(),
	}
	status.IsValid = status.Status == models.LicenseActive

	if record.ExpiresAt != nil {
		status.ExpiresAt = time.Unix(record.ExpiresAt.Seconds, 0).UTC().Format("2006-01-02")
	}

	return status
}

func statusFromRecord(status string) models.LicenseState {
	switch status {
	case "active":
		return models.LicenseActive
	case "expired":
		return models.LicenseExpired
	case "cancelled":
		return models.LicenseSuspended
	default:
		return models.LicenseError
	}
}

func (l *LicenseService) notRegistered(email string) models.LicenseStatus {
	return models.LicenseStatus{
		Status:          models.LicenseNotRegistered,
		DeviceUUID:      l.deviceUUID,
		Email:           email,
		RegistrationURL: l.RegistrationURL(),
	}
}

func (l *LicenseService) degraded(email string, err error) models.LicenseStatus {
	return models.LicenseStatus{
		Status:          models.LicenseError,
		DeviceUUID:      l.deviceUUID,
		Email:           email,
		RegistrationURL: l.RegistrationURL(),
		Err:             err.Error(),
	}
}

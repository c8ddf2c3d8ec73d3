package models

import "time"

// Session is the authenticated user's token bundle. Exactly one session is
// active at a time; a nil session means signed out.
type Session struct {
	Email        string `json:"email"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
	DeviceID     string `json:"device_id"`
}

// Valid reports whether the session is well-formed and not expired.
// A grace window keeps a nearly-expired token from being treated as live.
func (s *Session) Valid(now time.Time, grace time.Duration) bool {
	if s == nil || s.Email == "" || s.IDToken == "" || s.RefreshToken == "" {
		return false
	}
	return s.ExpiresAt >= now.Add(grace).Unix()
}

// LicenseState enumerates the possible license verdicts.
type LicenseState string

const (
	LicenseNotRegistered LicenseState = "not_registered"
	LicenseActive        LicenseState = "active"
	LicenseExpired       LicenseState = "expired"
	LicenseSuspended     LicenseState = "suspended"
	LicenseError         LicenseState = "error"
)

// LicenseStatus is the license service's verdict for a device or user.
// It is derived state: recomputed by querying the license service and
// replaced wholesale, never mutated in place.
type LicenseStatus struct {
	IsValid         bool         `json:"is_valid"`
	Status          LicenseState `json:"status"`
	DeviceUUID      string       `json:"device_uuid"`
	Email           string       `json:"email,omitempty"`
	RegistrationURL string       `json:"registration_url,omitempty"`
	ExpiresAt       string       `json:"expires_at,omitempty"`
	Err             string       `json:"error,omitempty"`
}

package shared

import "fmt"

var (
	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrLoginInProgress  = fmt.Errorf("login already in progress")
	ErrRefreshFailed    = fmt.Errorf("token refresh failed")

	// License errors
	ErrLicenseInvalid = fmt.Errorf("no valid license")

	// Engine and queue errors
	ErrEngineUnavailable = fmt.Errorf("download engine unavailable")

	// Drop bridge errors
	ErrInvalidDrop = fmt.Errorf("drop payload is not a URL")
	ErrManualEntry = fmt.Errorf("clipboard has no URL, manual entry required")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// AuthLogin runs the browser login flow and waits for it to finish.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if s := r.session.Session(); s != nil {
		return r.writePlain("Already signed in as %s. Run 'auth logout' first to switch accounts.\n", s.Email)
	}

	r.logger.Info("opening browser for sign in")
	r.writePlain("Waiting for you to finish signing in in the browser...\n")

	if err := r.session.BeginLogin(ctx); err != nil {
		return err
	}

	s := r.session.Session()
	r.writePlain("✓ Signed in as %s\n", s.Email)

	if status := r.session.License(); status != nil && !status.IsValid {
		r.writePlain("License is %s. Register this device at:\n  %s\n", status.Status, status.RegistrationURL)
	}

	return nil
}

// AuthLogout clears the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus prints the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	s := r.session.Session()

	if cmd.Bool("json") {
		if s == nil {
			return r.writeJSON(map[string]any{"signed_in": false}, true)
		}
		return r.writeJSON(map[string]any{
			"signed_in":  true,
			"email":      s.Email,
			"expires_at": s.ExpiresAt,
			"device_id":  s.DeviceID,
		}, true)
	}

	if s == nil {
		return r.writePlain("Signed out. Run 'auth login' to sign in.\n")
	}

	return r.writePlain("Signed in as %s\n", s.Email)
}

// AuthLicense re-checks the license and prints the verdict.
func (r *Runner) AuthLicense(ctx context.Context, cmd *cli.Command) error {
	status := r.session.CheckLicense(ctx)

	if cmd.Bool("json") {
		return r.writeJSON(status, true)
	}

	if status.IsValid {
		line := fmt.Sprintf("✓ License %s", status.Status)
		if status.ExpiresAt != "" {
			line = fmt.Sprintf("%s (until %s)", line, status.ExpiresAt)
		}
		return r.writePlain("%s\n", line)
	}

	r.writePlain("License is %s.\n", status.Status)
	if status.Err != "" {
		r.writePlain("  %s\n", status.Err)
	}
	return r.writePlain("Register this device at:\n  %s\n", status.RegistrationURL)
}

// AuthRefresh renews the session tokens.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.session.Refresh(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Session renewed\n")
}

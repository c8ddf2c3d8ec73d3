package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/desertthunder/grabbit/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive queue window.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/grabbit-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	b := r.connectBus()
	defer b.Close()

	model := ui.NewQueueModel(ctx, r.session, r.mirror)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// Companion launches the compact drop-zone companion surface.
func (r *Runner) Companion(ctx context.Context, cmd *cli.Command) error {
	fileLogger, err := shared.NewFileLogger("./tmp/grabbit-companion.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	b := r.connectBus()
	defer b.Close()

	model := ui.NewCompanionModel(ctx, r.bridge, r.mirror)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/grabbit/internal/auth"
	"github.com/desertthunder/grabbit/internal/bus"
	"github.com/desertthunder/grabbit/internal/drop"
	"github.com/desertthunder/grabbit/internal/engine"
	"github.com/desertthunder/grabbit/internal/queue"
	"github.com/desertthunder/grabbit/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	db      *sql.DB
	session *auth.Manager
	engine  engine.Engine
	mirror  *queue.Mirror
	bridge  *drop.Bridge
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	DB      *sql.DB
	Session *auth.Manager
	Engine  engine.Engine
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	mirror := queue.NewMirror(opts.Engine, opts.Session, opts.Logger)
	bridge := drop.NewBridge(mirror, opts.Engine, drop.SystemClipboard{}, opts.Logger)

	return &Runner{
		config:  opts.Config,
		db:      opts.DB,
		session: opts.Session,
		engine:  opts.Engine,
		mirror:  mirror,
		bridge:  bridge,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, queueCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the runner's logger and rewires the mirror and bridge
// onto it, so nothing keeps writing to the old destination.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	r.mirror = queue.NewMirror(r.engine, r.session, logger)
	r.bridge = drop.NewBridge(r.mirror, r.engine, drop.SystemClipboard{}, logger)
}

// connectBus opens the daemon's event stream and routes its frames: queue
// pushes replace the mirror's snapshot, drop payloads go through the bridge.
func (r *Runner) connectBus() bus.Bus {
	b := bus.NewWebSocketBus(r.config.Bus.URL, r.logger)

	b.SubscribeQueue(r.mirror.ApplyPush)
	b.SubscribeDrops(func(payload string) {
		if err := r.bridge.OnDropPayload(context.Background(), payload); err != nil {
			r.logger.Warn("could not queue dropped link", "error", err)
		}
	})

	return b
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

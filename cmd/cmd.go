// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles first-run configuration
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a starter configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles session and license operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Session and license operations",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Sign in with Google in your browser",
				Action: r.AuthLogin,
			},
			{
				Name:   "logout",
				Usage:  "Sign out and clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:  "license",
				Usage: "Check the license for this device",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.AuthLicense,
			},
			{
				Name:   "refresh",
				Usage:  "Renew the session tokens",
				Action: r.AuthRefresh,
			},
		},
	}
}

// queueCommand handles download queue operations
func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "queue",
		Aliases: []string{"q"},
		Usage:   "Download queue operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Queue a track, album, or playlist link",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "url",
					},
				},
				Action: r.QueueAdd,
			},
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "Show the queue",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.QueueList,
			},
			{
				Name:    "remove",
				Aliases: []string{"rm"},
				Usage:   "Remove a job by id",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.QueueRemove,
			},
			{
				Name:  "clear",
				Usage: "Clear finished jobs, or everything with --all",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Remove every job, not just finished ones",
					},
				},
				Action: r.QueueClear,
			},
			{
				Name:   "start",
				Usage:  "Start working the queue",
				Action: r.QueueStart,
			},
		},
	}
}

// tuiCommand launches the terminal surfaces
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Open the interactive queue window",
		Action: r.TUI,
		Commands: []*cli.Command{
			{
				Name:   "companion",
				Usage:  "Open the compact drop-zone companion",
				Action: r.Companion,
			},
		},
	}
}

// Package command provides CLI command definitions for wirekv-cli.
//
// It uses urfave/cli/v2 for command parsing. Each subcommand opens one
// connection, sends one request and prints the decoded reply.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "wirekv-cli",
		Usage:   "wirekv command-line client",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			EchoCommand(),
			GetCommand(),
			SetCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "wirekv server address",
			EnvVars: []string{"WIREKV_SERVER"},
			Value:   "127.0.0.1:6379",
		},
	}
}

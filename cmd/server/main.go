// Package main implements the lostfound command: the HTTP API server for
// lost and found listings plus its maintenance commands.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func main() {
	if err := newCLI().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lostfound:", err)
		os.Exit(1)
	}
}

func newCLI() *cli.App {
	return &cli.App{
		Name:    "lostfound",
		Usage:   "Lost and found classifieds API",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (defaults to ./config.yaml when present)",
				EnvVars: []string{"LOSTFOUND_CONFIG"},
			},
		},
		Action: serveCommand,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run migrations, seed categories and serve the HTTP API",
				Action: serveCommand,
			},
			{
				Name:  "migrate",
				Usage: "Manage the database schema",
				Subcommands: []*cli.Command{
					migrateSubcommand("up", "Apply all pending migrations"),
					migrateSubcommand("down", "Roll back the latest migration"),
					migrateSubcommand("status", "Show migration status"),
					migrateSubcommand("version", "Print the current schema version"),
				},
			},
			{
				Name:   "seed",
				Usage:  "Create the default categories when none exist",
				Action: seedCommand,
			},
			{
				Name:   "purge-codes",
				Usage:  "Delete expired verification codes",
				Action: purgeCodesCommand,
			},
			hashPasswordCommand(),
		},
	}
}

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	app := &cli.App{
		Name:    "doccontrol",
		Usage:   "Multi-tenant document-control register",
		Version: version,
		Description: "Organizations keep a register of versioned documents per project and " +
			"issue revisions to each other by transmittal. Configuration is read from " +
			"environment variables named <prefix>_<KEY>.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "env-prefix",
				Aliases: []string{"p"},
				Usage:   "Environment variable prefix",
				Value:   "DOCCONTROL",
				EnvVars: []string{"DOCCONTROL_ENV_PREFIX"},
			},
		},
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			historyCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("doccontrol failed")
	}
}

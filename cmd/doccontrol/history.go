package main

import (
	"context"
	"fmt"
	"os"

	"doccontrol/internal/core"
	"doccontrol/pkg/types"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v2"
)

var historyCommand = &cli.Command{
	Name:      "history",
	Usage:     "Print a document with its revisions and event log",
	ArgsUsage: "<document-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "as",
			Usage: "email of the superadmin to read as (defaults to the bootstrap admin)",
		},
	},
	Action: func(c *cli.Context) error {
		documentID := c.Args().First()
		if documentID == "" {
			return fmt.Errorf("document id is required")
		}

		cfg, err := loadConfig(c.String("env-prefix"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logger := newLogger(cfg)
		ctx := context.Background()

		register, closeStore, err := openService(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		email := c.String("as")
		if email == "" {
			email = cfg.BootstrapAdminEmail
		}

		actor, err := superadminActor(ctx, register, email)
		if err != nil {
			return err
		}

		doc, err := register.Document(ctx, actor, documentID)
		if err != nil {
			return err
		}

		revisions, err := register.ListRevisions(ctx, actor, documentID)
		if err != nil {
			return err
		}

		events, err := register.ListEvents(ctx, actor, documentID)
		if err != nil {
			return err
		}

		printer := pp.New()
		printer.SetColoringEnabled(isatty.IsTerminal(os.Stdout.Fd()))
		printer.Println(doc)
		printer.Println(revisions)
		printer.Println(events)

		return nil
	},
}

// superadminActor acts as an existing superadmin without a credential check.
// Operators running the binary already hold the database credentials.
func superadminActor(ctx context.Context, register *core.Service, email string) (core.Actor, error) {
	user, err := register.GetUserByEmail(ctx, email)
	if err != nil {
		return core.Actor{}, fmt.Errorf("failed to look up %s: %w", email, err)
	}
	if user == nil {
		return core.Actor{}, fmt.Errorf("no user with email %s", email)
	}
	if user.Role != types.RoleSuperAdmin {
		return core.Actor{}, fmt.Errorf("%s is not a superadmin", email)
	}

	return core.ActorFor(user), nil
}

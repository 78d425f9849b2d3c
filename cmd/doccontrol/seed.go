package main

import (
	"context"
	"fmt"

	"doccontrol/internal/core"
	"doccontrol/internal/seed"

	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Create the default superadmin and, optionally, demo data",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "demo",
			Usage: "Also create demo organizations, projects and documents",
		},
	},
	Action: func(c *cli.Context) error {
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

		admin, err := seed.Bootstrap(ctx, register, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword, logger)
		if err != nil {
			return err
		}

		if !c.Bool("demo") {
			return nil
		}

		logger.Info("Seeding demo data...")
		if err := seed.Demo(ctx, register, core.ActorFor(admin), logger); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}

		logger.Info("Demo data seeded successfully")

		return nil
	},
}

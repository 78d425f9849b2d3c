package main

import (
	"fmt"

	"doccontrol/internal/utils"

	"github.com/urfave/cli/v2"
)

var nanoidCommand = &cli.Command{
	Name:  "nanoid",
	Usage: "Print record ids in the format the register assigns",
	Flags: []cli.Flag{
		&cli.IntFlag{
			Name:    "count",
			Aliases: []string{"c"},
			Usage:   "Number of IDs to generate",
			Value:   1,
		},
		&cli.IntFlag{
			Name:    "size",
			Aliases: []string{"s"},
			Usage:   "ID length",
			Value:   utils.NanoidSize,
		},
	},
	Action: func(c *cli.Context) error {
		size := c.Int("size")
		for range c.Int("count") {
			fmt.Fprintln(c.App.Writer, utils.NanoIDSize(size))
		}
		return nil
	},
}

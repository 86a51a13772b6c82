package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/menteora/quill/scaffold"
)

func initCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a new site with sample content and the default templates",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory to create the site in",
				Value: ".",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.String("dir")
			created, err := scaffold.Run(scaffold.Config{Dir: dir})
			if err != nil {
				return err
			}
			if len(created) == 0 {
				log.Info("site already initialized", "dir", dir)
				return nil
			}
			for _, p := range created {
				log.Info("created", "file", p)
			}
			return nil
		},
	}
}

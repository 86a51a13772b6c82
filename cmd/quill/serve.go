package main

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/menteora/quill/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Build the site and serve it locally",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
				Value: server.DefaultPort,
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Rebuild when content, templates, static files or plugins change",
			},
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Base URL prefixed to every link (overrides BASE_URL and the config file)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := build(ctx, cfg); err != nil {
				return err
			}

			srv := &server.Server{Dir: cfg.OutputDir, Port: int(cmd.Int("port")), Logger: log.Default()}
			if !cmd.Bool("watch") {
				return srv.ListenAndServe(ctx)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			// Each rebuild reloads the configuration so template and plugin
			// edits are picked up.
			rebuild := func(ctx context.Context) error {
				cfg, err := loadConfig(cmd)
				if err != nil {
					return err
				}
				_, err = build(ctx, cfg)
				return err
			}

			watchErr := make(chan error, 1)
			go func() {
				watchErr <- server.Watch(ctx, sourceDirs(cfg), log.Default(), rebuild)
			}()

			err = srv.ListenAndServe(ctx)
			cancel()
			if werr := <-watchErr; err == nil {
				err = werr
			}
			return err
		},
	}
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/menteora/quill/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().Run(ctx, os.Args)
	stop()
	if err != nil {
		log.Error(err)
		os.Exit(exitCodeFor(err))
	}
}

func newRoot() *cli.Command {
	return &cli.Command{
		Name:  "quill",
		Usage: "Build a static blog from Markdown pages and posts",
		Description: `
             _ _ _
  __ _ _  _ (_) | |
 / _' | || || | | |
 \__, |\_,_||_|_|_|
    |_|

 Markdown in, a linked and paginated site out.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the site configuration file",
				Value: config.DefaultPath,
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			level, err := log.ParseLevel(cmd.String("log"))
			if err != nil {
				return ctx, err
			}
			log.SetLevel(level)
			return ctx, nil
		},
		Commands: []*cli.Command{
			buildCmd(),
			serveCmd(),
			initCmd(),
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/x/term"
	"github.com/urfave/cli/v3"

	"github.com/menteora/quill/config"
	"github.com/menteora/quill/core"
	"github.com/menteora/quill/render/terminal"
	"github.com/menteora/quill/site"
)

func buildCmd() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Render the site into the output directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "base-url",
				Usage: "Base URL prefixed to every link (overrides BASE_URL and the config file)",
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output directory (overrides output_dir)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if out := cmd.String("output"); out != "" {
				cfg.OutputDir = out
			}

			rep, err := build(ctx, cfg)
			if err != nil {
				return err
			}
			if term.IsTerminal(os.Stdout.Fd()) {
				return terminal.New().Render(os.Stdout, rep)
			}
			return nil
		},
	}
}

// loadConfig resolves the configuration: file, then .env and the
// environment, then the --base-url flag. A missing config file is only an
// error when --config was given explicitly.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	path := cmd.String("config")
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, config.ErrConfigNotFound) && !cmd.IsSet("config"):
		log.Debug("no config file, using defaults", "path", path)
		cfg = config.Default()
	case err != nil:
		return nil, err
	}

	cfg.ApplyEnv(os.Getenv)
	cfg.SetBaseURL(cmd.String("base-url"))
	return cfg, nil
}

func build(ctx context.Context, cfg *config.Config) (*core.Report, error) {
	b, err := site.New(cfg, site.WithLogger(log.Default()))
	if err != nil {
		return nil, err
	}
	rep, err := b.Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	return rep, nil
}

// sourceDirs lists the directories whose changes affect the output.
func sourceDirs(cfg *config.Config) []string {
	return []string{
		cfg.Content.Pages,
		cfg.Content.Posts,
		cfg.Content.Images,
		cfg.TemplatesDir,
		cfg.StaticDir,
		cfg.PluginsDir,
	}
}

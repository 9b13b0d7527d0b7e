package main

import (
	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
)

func getCommands() []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getVaultCommands()...)
	cmds = append(cmds, getSchemaCommands()...)
	return cmds
}

// newContainer loads and validates configuration before any connection is opened.
func newContainer() (*app.Container, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.NewContainer(cfg), nil
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

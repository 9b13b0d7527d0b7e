// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// Build-time version information (injected via ldflags during build).
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:     "fieldvault",
		Usage:    "Key vault and encrypted schema provisioning for the document store",
		Version:  version,
		Commands: getCommands(),
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
)

func getSchemaCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "configure-schema",
			Usage: "Create or update every registry collection with its encryption validator",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				driver, err := container.DriverUseCase()
				if err != nil {
					return err
				}
				registry, err := container.Registry()
				if err != nil {
					return err
				}

				return commands.RunConfigureSchema(
					ctx,
					driver,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "compile-schema",
			Usage: "Print the validators the registry compiles to, without contacting the store",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "key-id",
					Aliases: []string{"k"},
					Usage:   "Default data key id (base64), defaults to EXISTING_DEK_B64",
				},
				&cli.StringFlag{
					Name:    "collection",
					Aliases: []string{"c"},
					Usage:   "Compile only this collection",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				registry, err := container.Registry()
				if err != nil {
					return err
				}

				keyID := cmd.String("key-id")
				if keyID == "" {
					keyID = container.Config().ExistingDEKBase64
				}

				return commands.RunCompileSchema(
					registry,
					commands.DefaultIO().Writer,
					keyID,
					cmd.String("collection"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "drop-encrypted-data",
			Usage: "Drop every registry collection present in the target database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "confirm",
					Required: true,
					Usage:    "Target database name",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				provisioner, err := container.ProvisionerUseCase()
				if err != nil {
					return err
				}
				registry, err := container.Registry()
				if err != nil {
					return err
				}

				return commands.RunDropEncryptedData(
					ctx,
					provisioner,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("confirm"),
				)
			},
		},
	}
}

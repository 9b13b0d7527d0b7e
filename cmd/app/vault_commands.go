package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
)

func getVaultCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "init-vault",
			Usage: "Create the key vault's unique alternate-name index",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				keyVault, err := container.KeyVaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunInitVault(ctx, keyVault, container.Logger(), commands.DefaultIO().Writer)
			},
		},
		{
			Name:  "make-data-key",
			Usage: "Generate a data key wrapped by the configured master key and print its id",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "alt-name",
					Aliases: []string{"a"},
					Usage:   "Alternate name for the key (repeatable)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				keyVault, err := container.KeyVaultUseCase()
				if err != nil {
					return err
				}
				masterKey, err := container.MasterKey()
				if err != nil {
					return err
				}

				return commands.RunMakeDataKey(
					ctx,
					keyVault,
					masterKey,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.StringSlice("alt-name"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "list-data-keys",
			Usage: "List the data keys held by the key vault",
			Flags: []cli.Flag{formatFlag()},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				keyVault, err := container.KeyVaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunListDataKeys(
					ctx,
					keyVault,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "verify-data-key",
			Usage: "Unwrap a data key through the KMS to check the master key still authorizes it",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Data key id (base64)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				keyVault, err := container.KeyVaultUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyDataKey(
					ctx,
					keyVault,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "reset-vault",
			Usage: "Drop the key vault collection (destroys every data key)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "confirm",
					Required: true,
					Usage:    "Key vault namespace, e.g. encryption.__keyVault",
				},
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Reset even when encrypted collections still exist",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				container, err := newContainer()
				if err != nil {
					return err
				}
				defer commands.CloseContainer(container)

				keyVault, err := container.KeyVaultUseCase()
				if err != nil {
					return err
				}
				provisioner, err := container.ProvisionerUseCase()
				if err != nil {
					return err
				}
				registry, err := container.Registry()
				if err != nil {
					return err
				}

				return commands.RunResetVault(
					ctx,
					keyVault,
					provisioner,
					registry,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("confirm"),
					cmd.Bool("force"),
				)
			},
		},
	}
}

// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/activation/cmd/app/commands"
	"github.com/allisson/activation/internal/app"
	"github.com/allisson/activation/internal/config"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "app",
		Usage:   "Account activation service",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "activate",
				Usage: "Drive the password-creation flow against a running server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account ID (UUID) from the activation link",
					},
					&cli.StringFlag{
						Name:     "secret",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Plain secret from the activation link",
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Password to set for the account",
					},
					&cli.StringFlag{
						Name:    "server-url",
						Aliases: []string{"u"},
						Value:   "http://localhost:8080",
						Usage:   "Base URL of the running API server",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					client := commands.NewFlowClient(cfg, cmd.String("server-url"))

					return commands.RunActivate(
						ctx,
						client,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("account-id"),
						cmd.String("secret"),
						cmd.String("password"),
					)
				},
			},
			{
				Name:  "create-invitation",
				Usage: "Issue an activation invitation for an existing account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account-id",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account ID (UUID) the invitation is issued for",
					},
					&cli.DurationFlag{
						Name:  "ttl",
						Usage: "Invitation lifetime (defaults to INVITATION_TTL_HOURS)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					cfg := config.Load()
					container := app.NewContainer(cfg)
					defer func() { _ = container.Shutdown(ctx) }()

					useCase, err := container.ActivationUseCase()
					if err != nil {
						return err
					}

					ttl := cmd.Duration("ttl")
					if ttl <= 0 {
						ttl = cfg.InvitationTTL
					}

					return commands.RunCreateInvitation(
						ctx,
						useCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("account-id"),
						ttl,
						cmd.String("format"),
					)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

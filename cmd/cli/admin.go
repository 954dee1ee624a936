package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/transferledger/internal/adapter/repository/postgres"
	"github.com/iho/transferledger/internal/infrastructure/auth"
	"github.com/iho/transferledger/internal/infrastructure/config"
	"github.com/iho/transferledger/internal/infrastructure/logger"
	"github.com/iho/transferledger/internal/infrastructure/postgres"
)

// loadConfig reads the server configuration so admin commands share its
// environment variables.
var loadConfig = config.Load

func migrateCmd() *cobra.Command {
	var databaseURL, path string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")

	resolve := func() (string, string, error) {
		cfg, err := loadConfig()
		if err != nil {
			return "", "", err
		}
		url, dir := cfg.DatabaseURL, cfg.MigrationsPath
		if databaseURL != "" {
			url = databaseURL
		}
		if path != "" {
			dir = path
		}
		return url, dir, nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, dir, err := resolve()
			if err != nil {
				return err
			}
			return postgres.RunMigrations(url, dir, cliLogger(cmd))
		},
	}, &cobra.Command{
		Use:   "down",
		Short: "Roll back the last applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, dir, err := resolve()
			if err != nil {
				return err
			}
			return postgres.RunMigrationsDown(url, dir, cliLogger(cmd))
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	var (
		databaseURL string
		balances    map[string]string
	)

	cmd := &cobra.Command{
		Use:     "seed",
		Short:   "Create accounts with opening balances",
		Example: "  ledger-cli seed --balance 1001=200.00 --balance 1002=0",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(balances) == 0 {
				return fmt.Errorf("at least one --balance is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.DatabaseTimeout)
			defer cancel()

			pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, 2, 1)
			if err != nil {
				return err
			}
			defer pool.Close()

			seeder := postgresRepo.NewSeeder(
				postgresRepo.NewTxManager(pool),
				postgresRepo.NewAccountRepository(pool),
				postgresRepo.NewEntryRepository(pool),
				postgresRepo.NewULIDGenerator(),
			)

			created, err := seeder.Seed(ctx, balances)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d account(s)\n", created)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (defaults to DATABASE_URL)")
	cmd.Flags().StringToStringVar(&balances, "balance", nil, "Opening balance as number=amount (repeatable)")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret   string
		scopes   []string
		validFor time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <subject>",
		Short: "Issue an API bearer token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or JWT_SECRET)")
			}

			token, err := auth.NewJWTManager(secret, validFor).Generate(args[0], scopes...)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "Signing secret")
	cmd.Flags().StringSliceVar(&scopes, "scope", []string{auth.ScopeRead, auth.ScopeTransfer}, "Granted scopes")
	cmd.Flags().DurationVar(&validFor, "ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func cliLogger(cmd *cobra.Command) zerolog.Logger {
	return logger.NewWithWriter(logger.Config{Level: "info", Format: "console"}, cmd.ErrOrStderr())
}

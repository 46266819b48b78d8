package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yigit/unicampus/internal/app/repositories"
	"github.com/yigit/unicampus/internal/bootstrap"
	"github.com/yigit/unicampus/internal/config"
	"github.com/yigit/unicampus/internal/db"
	"github.com/yigit/unicampus/internal/seed"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errPasswordMismatch = errors.New("passwords do not match")
	errEmptyPassword    = errors.New("password must not be empty")
)

var migrateCommands = []string{"up", "down", "status", "version", "reset", "redo"}

// runtime is what a command needs once configuration and the database are up
type runtime struct {
	cfg      *config.Config
	database *db.PostgresDB
	repos    *repositories.Repositories
	logger   zerolog.Logger
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "admin",
		Short:         "UniCampus maintenance commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "path to the configuration file")

	withRuntime := func(fn func(ctx context.Context, rt *runtime) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(configPath)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			database, err := db.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			return fn(ctx, &runtime{
				cfg:      cfg,
				database: database,
				repos:    repositories.NewRepositories(database),
				logger:   lgr,
			})
		}
	}

	root.AddCommand(
		newMigrateCmd(withRuntime),
		newSeedCmd(withRuntime),
		newCreateAdminCmd(withRuntime),
		newResetPasswordCmd(withRuntime),
		newTokensCmd(withRuntime),
	)
	return root
}

type runtimeWrapper func(fn func(ctx context.Context, rt *runtime) error) func(*cobra.Command, []string) error

func newMigrateCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version|reset|redo]",
		Short:     "Run database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: migrateCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(func(ctx context.Context, rt *runtime) error {
				return bootstrap.RunMigrations(ctx, rt.database, args[0], rt.logger)
			})(cmd, args)
		},
	}
}

func newSeedCmd(with runtimeWrapper) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the configured administrator and default departments",
		Args:  cobra.NoArgs,
		RunE: with(func(ctx context.Context, rt *runtime) error {
			return seed.Run(ctx, rt.repos, rt.database, bootstrap.SeedAdmin(rt.cfg), rt.logger)
		}),
	}
}

func newCreateAdminCmd(with runtimeWrapper) *cobra.Command {
	var admin seed.Admin

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account; the password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}
			admin.Password = password

			return with(func(ctx context.Context, rt *runtime) error {
				created, err := seed.EnsureAdmin(ctx, rt.database, rt.repos.User, admin, rt.logger)
				if err != nil {
					return err
				}
				if !created {
					return fmt.Errorf("an account with email %s already exists", admin.Email)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Administrator %s created\n", admin.Email)
				return nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&admin.Email, "email", "", "administrator email")
	cmd.Flags().StringVar(&admin.FirstName, "first-name", "System", "first name")
	cmd.Flags().StringVar(&admin.LastName, "last-name", "Administrator", "last name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newResetPasswordCmd(with runtimeWrapper) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Reset a user's password; the new password is prompted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := promptPassword(cmd.OutOrStdout(), true)
			if err != nil {
				return err
			}

			return with(func(ctx context.Context, rt *runtime) error {
				if err := seed.ResetPassword(ctx, rt.repos.User, email, password); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password for %s updated\n", email)
				return nil
			})(cmd, args)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email of the account")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newTokensCmd(with runtimeWrapper) *cobra.Command {
	tokens := &cobra.Command{
		Use:   "tokens",
		Short: "Manage refresh tokens",
	}

	tokens.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Delete expired and revoked refresh tokens",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(func(ctx context.Context, rt *runtime) error {
				removed, err := rt.repos.Token.CleanupExpiredTokens(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d tokens\n", removed)
				return nil
			})(cmd, args)
		},
	})
	return tokens
}

// promptPassword reads a password from the terminal without echo
func promptPassword(out io.Writer, confirm bool) (string, error) {
	fmt.Fprint(out, "Enter password: ")
	pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	if !confirm {
		return string(pwd), nil
	}

	fmt.Fprint(out, "Confirm password: ")
	again, err := readPasswordFunc(int(os.Stdin.Fd()))
	fmt.Fprintln(out)
	if err != nil {
		return "", err
	}
	if string(again) != string(pwd) {
		return "", errPasswordMismatch
	}
	return string(pwd), nil
}

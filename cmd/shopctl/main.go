// Package main provides shopctl, the operator tool for the shop directory.
//
// shopctl imports a CSV export of repair shops into PostgreSQL and prints
// read-only summaries of what is stored.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/shopdir/internal/config"
	"github.com/JonMunkholm/shopdir/internal/core"
	"github.com/JonMunkholm/shopdir/internal/diagnostics"
	"github.com/JonMunkholm/shopdir/internal/logging"
	"github.com/JonMunkholm/shopdir/internal/store"
)

const (
	Version = "0.1.0"
	appName = "shopctl"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitPartial = 3
)

// shopStore is what the commands need from the database.
type shopStore interface {
	core.ShopStore
	diagnostics.ShopReader
}

// openStore is replaced in tests.
var openStore = func(ctx context.Context, cfg config.DatabaseConfig) (shopStore, error) {
	return store.Open(ctx, cfg)
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and returns the exit code. Deferred
// cleanup in the commands has finished by the time it returns.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := rootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	if core.IsUserFacing(err) {
		fmt.Fprintln(stderr, core.FormatUserError(err))
	}

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// env is the state shared by all subcommands after PersistentPreRunE.
type env struct {
	stdout io.Writer
	stderr io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		envFile  string
		logLevel string
	)
	e := &env{stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Import and inspect the motorcycle repair shop directory",
		Long: `shopctl loads a CSV export of motorcycle repair shops into PostgreSQL.

Configuration comes from the environment (DATABASE_URL, IMPORT_DIR, ...),
optionally read from a .env file first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return e.load(envFile, logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file to load if present")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	cmd.AddCommand(importCmd(e))
	cmd.AddCommand(checkCmd(e))
	cmd.AddCommand(showCmd(e))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// load reads the env file, the configuration and sets up logging on stderr.
func (e *env) load(envFile, logLevel string) error {
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	e.cfg = cfg
	e.logger = logging.New(e.stderr, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(e.logger)
	e.logger.Debug("configuration loaded", "config", cfg)
	return nil
}

// withStore opens the store, runs fn and closes the store on every path.
func (e *env) withStore(ctx context.Context, fn func(shopStore) error) error {
	st, err := openStore(ctx, e.cfg.Database)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

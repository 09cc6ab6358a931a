package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/san-kum/dynode/internal/logging"
	"github.com/san-kum/dynode/internal/storage"
)

const (
	keyData     = "data"
	keyLogLevel = "log-level"
	keyTheme    = "theme"
)

var (
	settings = viper.New()
	logger   = zerolog.Nop()
)

// main registers the dynode commands and exits with status 1 if the
// selected command fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "dynode",
		Short:             "adaptive ODE integration lab",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadSettings,
	}

	pf := rootCmd.PersistentFlags()
	pf.String(keyData, ".dynode", "data directory")
	pf.String(keyLogLevel, "info", "log level (trace, debug, info, warn, error)")
	pf.String(keyTheme, "cyberpunk", "watch color theme")

	rootCmd.AddCommand(
		newSolveCmd(),
		newWatchCmd(),
		newSweepCmd(),
		newCompareCmd(),
		newBifurcationCmd(),
		newPresetsCmd(),
		newListCmd(),
		newPlotCmd(),
		newPhaseCmd(),
		newAnalyzeCmd(),
		newExportCSVCmd(),
		newExportJSONCmd(),
		newExportPlotCmd(),
	)
	return rootCmd
}

// loadSettings resolves the global settings from flags, DYNODE_*
// environment variables and an optional dynode.yaml in the working
// directory, in that order of precedence.
func loadSettings(cmd *cobra.Command, _ []string) error {
	settings.SetEnvPrefix("DYNODE")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()
	settings.SetConfigName("dynode")
	settings.SetConfigType("yaml")
	settings.AddConfigPath(".")

	if err := settings.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	if err := settings.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read settings: %w", err)
		}
	}

	logger = logging.New(settings.GetString(keyLogLevel), os.Stderr)
	return nil
}

func openStore() *storage.Store {
	return storage.New(settings.GetString(keyData))
}

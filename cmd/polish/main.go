package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sant0-9/polish/internal/config"
	"github.com/sant0-9/polish/internal/history"
	"github.com/sant0-9/polish/internal/library"
	"github.com/sant0-9/polish/internal/llm"
	"github.com/sant0-9/polish/internal/logging"
	"github.com/sant0-9/polish/internal/tui"
)

var version = "dev"

var (
	// Global flags
	verbose bool

	cfg      *config.Config
	cfgFound bool
	logger   *zap.Logger

	// newProvider is replaced in tests.
	newProvider = llm.NewProvider
)

var rootCmd = &cobra.Command{
	Use:   "polish",
	Short: "Turn rough prompts into precise ones",
	Long: `polish asks a language model how your prompt could be better, lets you pick
the suggestions you agree with, and rewrites the prompt with them applied.

Run without arguments to start the interactive editor.`,
	SilenceUsage:      true,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runTUI,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "polish %s\n", version)
	},
}

func init() {
	rootCmd.PersistentPreRunE = setup
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging (also to stderr outside the editor)")

	rootCmd.AddCommand(enhanceCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(templatesCmd)
	rootCmd.AddCommand(techniquesCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the config and builds the logger for every command.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, cfgFound, err = config.Resolve()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logPath, err := config.LogPath()
	if err != nil {
		return err
	}
	logger, err = logging.New(logging.Options{
		Level: level,
		Path:  logPath,
		// The editor owns the terminal.
		Stderr: verbose && cmd.HasParent(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("config resolved",
		zap.Bool("file", cfgFound),
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		logging.Secret("api_key", cfg.APIKey),
	)
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := openHistory()
	if err != nil {
		logger.Warn("history unavailable", zap.Error(err))
	} else {
		defer store.Close()
	}

	app := tui.NewApp(tui.Deps{
		Config:     cfg,
		NeedsSetup: !cfgFound || !cfg.Ready(),
		History:    store,
		Library:    loadLibrary(),
		Logger:     logger,
	})
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()
	return err
}

func openHistory() (*history.Store, error) {
	path, err := config.HistoryPath()
	if err != nil {
		return nil, err
	}
	return history.Open(path,
		history.WithLimit(cfg.HistoryLimit),
		history.WithLogger(logger),
	)
}

func loadLibrary() *library.Library {
	dir, err := config.TemplatesDir()
	if err != nil {
		logger.Warn("templates dir unavailable", zap.Error(err))
	}
	lib, err := library.Load(dir)
	if err != nil {
		logger.Warn("templates unavailable", zap.Error(err))
		return nil
	}
	for _, p := range lib.Problems {
		logger.Warn("skipped template file", zap.Error(p))
	}
	return lib
}

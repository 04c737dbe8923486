package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/veriscope/veriscope/internal/app"
	"github.com/veriscope/veriscope/internal/config"
	"github.com/veriscope/veriscope/internal/tui"
	"github.com/veriscope/veriscope/internal/watch"
)

var (
	debug     bool
	baseURL   string
	ephemeral bool
	watchMode bool

	cfg          *config.Config
	veriscopeApp *app.App
	logFile      *os.File
)

var rootCmd = &cobra.Command{
	Use:   "veriscope",
	Short: "Terminal dashboard for deepfake detection",
	Long: `Veriscope is a terminal client for a deepfake detection service.

Usage:
  veriscope                  # Start the interactive dashboard
  veriscope analyze clip.mp4 # One-shot analysis from the command line
  veriscope history list     # Inspect past analyses
  veriscope serve            # Run a local mock detection service`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if baseURL != "" {
			cfg.API.BaseURL = baseURL
		}
		if debug {
			cfg.Debug = true
		}

		// The serve command needs no client-side wiring.
		if cmd.Name() == "serve" {
			setupLogging(false)
			return nil
		}

		// The dashboard owns the terminal, so logs go to a file there.
		setupLogging(cmd.Name() == "veriscope")

		veriscopeApp, err = app.New(cfg, app.Options{Ephemeral: ephemeral})
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if veriscopeApp != nil {
			veriscopeApp.Close()
		}
		if logFile != nil {
			logFile.Close()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		veriscopeApp.StartMonitor(ctx)

		var watcher *watch.InboxWatcher
		if watchMode || cfg.Watch.Enabled {
			var err error
			watcher, err = watch.NewInboxWatcher(cfg.Watch.Dir)
			if err != nil {
				return err
			}
			watcher.Start(ctx)
			defer watcher.Close()
			log.Info("watching inbox", "dir", cfg.Watch.Dir)
		}

		return tui.Run(veriscopeApp, watcher)
	},
}

// setupLogging routes logs to a file when the TUI owns the terminal,
// otherwise to stderr.
func setupLogging(toFile bool) {
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if !toFile {
		return
	}
	if err := os.MkdirAll(cfg.Data.Directory, 0755); err != nil {
		return
	}
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	logFile = f
	log.SetOutput(f)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&baseURL, "api", "", "Detection service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep history in memory only")
	rootCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Auto-submit media dropped into the inbox directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alvarorichard/anipahe/internal/appflow"
	"github.com/alvarorichard/anipahe/internal/config"
	"github.com/alvarorichard/anipahe/internal/tui"
	"github.com/alvarorichard/anipahe/internal/util"
	"github.com/alvarorichard/anipahe/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	perfFlag bool

	v   = viper.New()
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "anipahe",
	Short: "Browse, search and play anime from an anipahe backend",
	Long: `anipahe is a terminal front-end for the anipahe catalog backend.
Without a subcommand it starts the full-screen interface.`,
	Version:           version.Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if perfFlag {
			util.GetPerfTracker().WriteReport(os.Stderr)
		}
	},
	RunE: runTUI,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, util.ErrorHandler(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/anipahe/config.yaml or ./config.yaml)")
	flags.Bool("debug", false, "enable debug logging")
	flags.BoolVar(&perfFlag, "perf", false, "print timing metrics on exit")
	flags.String("base-url", config.DefaultBaseURL, "backend base URL")
	flags.Int("page-size", 20, "browse page size (1-100)")
	flags.Bool("discord", true, "show Discord Rich Presence while playing")

	_ = v.BindPFlag(config.KeyDebug, flags.Lookup("debug"))
	_ = v.BindPFlag(config.KeyBaseURL, flags.Lookup("base-url"))
	_ = v.BindPFlag(config.KeyPageSize, flags.Lookup("page-size"))
	_ = v.BindPFlag(config.KeyDiscord, flags.Lookup("discord"))

	rootCmd.AddCommand(searchCmd, browseCmd, favoritesCmd, settingsCmd, versionCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	if err := config.Prepare(v, cfgFile); err != nil {
		return err
	}
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	util.SetDebugMode(cfg.Debug)
	util.PerfEnabled = perfFlag || cfg.Debug
	util.InitLogger()
	if f := v.ConfigFileUsed(); f != "" {
		util.Debug("using config file", "path", f)
	}
	return nil
}

func newApp(ctx context.Context) (*appflow.App, error) {
	return appflow.New(ctx, cfg)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// the alt-screen owns the terminal, so logs go to a file
	closer, err := util.InitFileLogger(cfg.LogPath())
	if err != nil {
		return err
	}
	defer closer.Close()

	app, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	util.Info("starting", "version", version.Version, "backend", cfg.BaseURL)
	return tui.Run(cmd.Context(), app)
}

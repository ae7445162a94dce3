package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/jadwal-shalat/internal/config"
	"github.com/smokyabdulrahman/jadwal-shalat/internal/display"
)

// Global flags shared across all subcommands.
var (
	FlagDate       string
	FlagProvince   string
	FlagRegency    string
	FlagAll        bool
	FlagJSON       bool
	FlagYAML       bool
	FlagCacheDir   string
	FlagTimeFormat string
	FlagVerbose    bool
)

// Loaded during PersistentPreRunE and read by every subcommand handler.
var (
	loadedConfig *config.Config
	loadedEnv    config.Env
	logger       = slog.Default()
)

// NewRootCmd creates the root command for the jadwal-shalat CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jadwal-shalat",
		Short: "Indonesian prayer schedule from bimasislam.kemenag.go.id",
		Long: "Show the official Kemenag prayer schedule for an Indonesian regency.\n" +
			"Without a subcommand, prints the prayer that just passed and the next one.",
		Version: version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if FlagVerbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if FlagJSON && FlagYAML {
				return fmt.Errorf("--json and --yaml cannot be used together")
			}
			if FlagJSON || FlagYAML {
				display.SetEnabled(false)
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			loadedConfig = cfg

			env, err := config.LoadEnv()
			if err != nil {
				return err
			}
			loadedEnv = env
			return nil
		},
		// Default action: show today's nearest prayers.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagDate, "date", "", "Date to show as YYYY-MM-DD (default: today)")
	pf.StringVarP(&FlagProvince, "province", "p", "", "Province name, e.g. \"JAWA BARAT\" (overrides env and config)")
	pf.StringVarP(&FlagRegency, "regency", "r", "", "Regency or city name, e.g. \"KOTA BANDUNG\" (overrides env and config)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON")
	pf.BoolVar(&FlagYAML, "yaml", false, "Output as YAML")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/jadwal-shalat/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.BoolVarP(&FlagVerbose, "verbose", "v", false, "Log cache and network activity to stderr")

	rootCmd.Flags().BoolVarP(&FlagAll, "all", "a", false, "Show every event of the day instead of only the nearest two")

	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newRegionsCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// effectiveConfig returns the merged configuration values, applying the
// priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
func effectiveConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if loadedConfig != nil {
		cfg = *loadedConfig
	}
	loadedEnv.Apply(&cfg)

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	if flagWasSet(flags, root, "province") {
		cfg.Province = FlagProvince
	}
	if flagWasSet(flags, root, "regency") {
		cfg.Regency = FlagRegency
	}
	if flagWasSet(flags, root, "cache-dir") {
		cfg.CacheDir = FlagCacheDir
	}
	if flagWasSet(flags, root, "time-format") {
		cfg.TimeFormat = FlagTimeFormat
	}

	defaults := config.Defaults()
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	if f := local.Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

// clockLayout maps the time_format setting to a Go layout.
func clockLayout(timeFormat string) string {
	if timeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

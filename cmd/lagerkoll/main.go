package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/hylla/lagerkoll/internal/adapters/channel"
	"github.com/hylla/lagerkoll/internal/config"
	"github.com/hylla/lagerkoll/internal/platform"
)

// version stores a package-level helper value.
var version = "dev"

// rootFlags holds the persistent CLI flags shared by every subcommand.
type rootFlags struct {
	configPath string
	appName    string
	devMode    bool
}

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := fang.Execute(ctx, newRootCommand(), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// newRootCommand builds the CLI tree. The bare command launches the
// dashboard; watch runs the same reconciler headless.
func newRootCommand() *cobra.Command {
	flags := &rootFlags{}

	defaultDevMode := version == "dev"
	if envDev, ok := parseBoolEnv("LAGERKOLL_DEV_MODE"); ok {
		defaultDevMode = envDev
	}
	defaultAppName := "lagerkoll"
	if envApp := strings.TrimSpace(os.Getenv("LAGERKOLL_APP_NAME")); envApp != "" {
		defaultAppName = envApp
	}

	root := &cobra.Command{
		Use:           "lagerkoll",
		Short:         "Live inventory dashboard over a push channel",
		Long:          "lagerkoll renders a live inventory dashboard fed by a push channel.\nItem updates, full syncs, and inventory alerts arrive over the channel;\nnew items are created through the backing HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&flags.appName, "app", defaultAppName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&flags.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Run the dashboard (the default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDashboard(cmd.Context(), flags)
			},
		},
		&cobra.Command{
			Use:   "watch",
			Short: "Follow channel traffic headless, logging applied changes",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWatch(cmd.Context(), flags)
			},
		},
		&cobra.Command{
			Use:   "paths",
			Short: "Print the resolved config and data locations",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPaths(cmd, flags)
			},
		},
	)
	return root
}

// runtimeEnv is the resolved per-run wiring state shared by the dashboard
// and watch flows.
type runtimeEnv struct {
	cfg        config.Config
	paths      platform.Paths
	configPath string
	logger     *runtimeLogger
}

// resolveRuntime loads paths and configuration, applies env overrides, and
// configures logging.
func resolveRuntime(flags *rootFlags) (*runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return nil, err
	}

	configPath := flags.configPath
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("LAGERKOLL_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}

	cfg, err := config.Load(configPath, config.Default())
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if addr := strings.TrimSpace(os.Getenv("LAGERKOLL_REDIS_ADDR")); addr != "" {
		cfg.Channel.Addr = addr
	}
	if base := strings.TrimSpace(os.Getenv("LAGERKOLL_API_URL")); base != "" {
		cfg.API.BaseURL = base
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger, err := newRuntimeLogger(os.Stderr, flags.appName, flags.devMode, cfg.Logging, filepath.Join(paths.DataDir, "log"))
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}

	logger.Info("startup configuration resolved", "app", flags.appName, "dev_mode", flags.devMode)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir)
	logger.Info("configuration loaded", "config_path", configPath, "channel_addr", cfg.Channel.Addr, "api_base_url", cfg.API.BaseURL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	return &runtimeEnv{
		cfg:        cfg,
		paths:      paths,
		configPath: configPath,
		logger:     logger,
	}, nil
}

// channelConfig maps persisted channel settings into the adapter config.
func channelConfig(cfg config.ChannelConfig) channel.Config {
	return channel.Config{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		UpdatesTopic: cfg.UpdatesTopic,
		AlertsTopic:  cfg.AlertsTopic,
		SyncTopic:    cfg.SyncTopic,
		LegacyTopic:  cfg.LegacyTopic,
	}
}

// runPaths prints the resolved per-user locations.
func runPaths(cmd *cobra.Command, flags *rootFlags) error {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: flags.appName,
		DevMode: flags.devMode,
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "app: %s\n", flags.appName)
	_, _ = fmt.Fprintf(out, "dev_mode: %t\n", flags.devMode)
	_, _ = fmt.Fprintf(out, "config: %s\n", paths.ConfigPath)
	_, _ = fmt.Fprintf(out, "data_dir: %s\n", paths.DataDir)
	return nil
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

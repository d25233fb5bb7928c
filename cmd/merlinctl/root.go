package main

import (
	"context"
	"fmt"
	"os"

	"github.com/danmuck/merlinctl/internal/config"
	"github.com/danmuck/merlinctl/internal/logging"
	"github.com/danmuck/merlinctl/internal/merlin"
	"github.com/danmuck/merlinctl/internal/observability"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	host       string
	port       int
	channel    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "merlinctl",
		Short:         "Control a Merlin pixel detector over its command channel",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a merlinctl TOML config")
	flags.StringVar(&opts.host, "host", "", "detector control host (overrides config)")
	flags.IntVar(&opts.port, "port", 0, "detector control port (overrides config)")
	flags.StringVar(&opts.channel, "channel", "", "command or data (overrides config)")
	flags.StringVar(&opts.logLevel, "log-level", "", "trace|debug|info|warn|error|disabled")

	root.AddCommand(
		newVarsCmd(),
		newGetCmd(opts),
		newSetCmd(opts),
		newExecCmd(opts),
		newPresetCmd(opts),
		newWaitCmd(opts),
	)
	return root
}

// load resolves the config file and flag overrides and sets up logging.
func (o *rootOptions) load(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		loaded, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Port = o.port
	}
	if flags.Changed("channel") {
		cfg.Channel = o.channel
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}

	logging.ConfigureRuntime()
	if os.Getenv(logging.EnvLogLevel) == "" {
		if lvl, ok := logging.ParseLevel(cfg.LogLevel); ok {
			zerolog.SetGlobalLevel(lvl)
		}
	}
	observability.RegisterMetrics()
	observability.InitLogger("merlinctl")
	return cfg, nil
}

// connect loads the config and dials the detector.
func (o *rootOptions) connect(cmd *cobra.Command) (*merlin.Connection, config.Config, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, config.Config{}, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := merlin.Connect(ctx, cfg.Addr(), cfg.Session())
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("connect %s: %w", cfg.Addr(), err)
	}
	return conn, cfg, nil
}

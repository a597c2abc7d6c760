package main

import (
	"github.com/spf13/cobra"

	"github.com/danmuck/dirpost/internal/config"
)

type cliOptions struct {
	configPath string
	directory  string
	host       string
	port       int
	reverse    bool
	logLevel   string
	noProgress bool
}

func addFlags(cmd *cobra.Command, opts *cliOptions) {
	defaults := config.Default()
	cmd.Flags().StringVar(&opts.configPath, "config", "", "optional TOML config file")
	cmd.Flags().StringVarP(&opts.directory, "directory", "d", defaults.Directory, "directory to send from or receive into")
	cmd.Flags().StringVarP(&opts.host, "host", "i", "", "host to connect to; listen when empty")
	cmd.Flags().IntVarP(&opts.port, "port", "p", defaults.Port, "TCP port")
	cmd.Flags().BoolVarP(&opts.reverse, "reverse", "r", false, "invert the transfer direction")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "log level: trace / debug / info / warn / error")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "disable the progress bar")
}

// resolveConfig layers defaults, the optional config file, and any
// flags the user actually set, in that order.
func resolveConfig(cmd *cobra.Command, opts cliOptions) (config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath, cfg)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		cfg.Directory = opts.directory
	}
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("reverse") {
		cfg.Reverse = opts.reverse
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("no-progress") {
		cfg.NoProgress = opts.noProgress
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/dirpost/internal/config"
	"github.com/danmuck/dirpost/internal/engine"
	"github.com/danmuck/dirpost/internal/fsys"
	"github.com/danmuck/dirpost/internal/logging"
	"github.com/danmuck/dirpost/internal/protocol"
	"github.com/danmuck/dirpost/internal/session"
	"github.com/danmuck/dirpost/internal/transport"
	"github.com/danmuck/dirpost/internal/ui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dirpost: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts cliOptions

	cmd := &cobra.Command{
		Use:   "dirpost",
		Short: "post a directory tree to another host over one TCP connection",
		Long: `dirpost moves the contents of a directory between two hosts over a
single TCP connection.

  listener  receiving: dirpost -d DIR -p PORT
  initiator sending:   dirpost -d DIR -p PORT -i HOST
  listener  sending:   dirpost -d DIR -p PORT -r
  initiator receiving: dirpost -d DIR -p PORT -r -i HOST`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return err
			}
			logging.ConfigureRuntime(cfg.LogLevel)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	addFlags(cmd, &opts)
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	root, err := fsys.NewDir(cfg.Directory)
	if err != nil {
		return err
	}

	sessCfg := session.Config{
		Root:    root.Root(),
		Host:    cfg.Host,
		Port:    cfg.Port,
		Reverse: cfg.Reverse,
	}
	log.Info().
		Stringer("role", sessCfg.Role()).
		Stringer("direction", sessCfg.Direction()).
		Int("port", cfg.Port).
		Str("dir", root.Root()).
		Msg("starting session")

	sess, err := session.Negotiate(ctx, sessCfg)
	if err != nil {
		return err
	}
	defer sess.Close()

	var progress engine.Progress = engine.NopProgress{}
	if !cfg.NoProgress {
		progress = ui.NewBar(os.Stderr)
	}
	eng := engine.New(engine.Config{
		Stream:   transport.NewStream(sess.Channel, protocol.DefaultLimits()),
		Root:     root,
		Progress: progress,
	})
	if sess.Direction == session.DirectionSend {
		return eng.Send(ctx)
	}
	return eng.Receive(ctx)
}

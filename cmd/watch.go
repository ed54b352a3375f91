package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chhz0/tasktrack/config"
	"github.com/chhz0/tasktrack/transport"
	"github.com/chhz0/tasktrack/types"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print task events broadcast by running trackers",
		Long: `watch subscribes to the redis pub/sub channel configured under transport.redis
and prints every task event until interrupted.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			r := cfg.Transport.Redis
			tr, err := transport.NewRedisTransport(ctx, r.Addr, r.Password, r.DB, r.Prefix)
			if err != nil {
				return fmt.Errorf("connect transport: %w", err)
			}
			defer tr.Close()

			events, err := tr.Subscribe(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", tr.Channel())
			return printEvents(ctx, cmd.OutOrStdout(), events, cfg.Shell.Color)
		},
	}
}

// printEvents writes one line per event until events closes or ctx is done.
func printEvents(ctx context.Context, w io.Writer, events <-chan *types.Event, useColor bool) error {
	kind := color.New(color.FgGreen)
	if !useColor {
		kind.DisableColor()
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "%s %s %s\n", ev.At.Local().Format(time.DateTime), kind.Sprintf("%-14s", ev.Kind), ev.Task)
		case <-ctx.Done():
			return nil
		}
	}
}

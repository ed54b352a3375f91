package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/chhz0/tasktrack/config"
	"github.com/chhz0/tasktrack/core"
	"github.com/chhz0/tasktrack/logger"
	"github.com/chhz0/tasktrack/retry"
	"github.com/chhz0/tasktrack/shell"
	"github.com/chhz0/tasktrack/storage"
	"github.com/chhz0/tasktrack/transport"
	"github.com/spf13/cobra"
)

var flagConfig string

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasktrack",
		Short: "Interactive in-memory task tracker",
		Long: `tasktrack keeps prioritized, tagged tasks in memory and serves a small
menu on stdin/stdout. Task events can be journaled to bolt, sqlite or redis
and broadcast over redis pub/sub.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flagConfig, cmd.Flags())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (yaml, json or toml)")
	cmd.Flags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.Flags().String("log-format", "", "Log format: text or json")
	cmd.Flags().String("journal", "", "Event journal: none, memory, bolt, sqlite, redis")
	cmd.Flags().String("journal-path", "", "Journal file for bolt and sqlite")
	cmd.Flags().String("retry", "", "Sink retry strategy: exponential, fixed, composite")

	cmd.AddCommand(watchCmd())
	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	log, err := logger.Setup(cfg.Log, os.Stderr)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	recorder, err := newRecorder(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			log.Warn("close recorder", "error", err)
		}
	}()

	sh, err := shell.New(shell.Config{
		In:            os.Stdin,
		Out:           os.Stdout,
		Store:         core.NewStore(),
		Recorder:      recorder,
		Logger:        log,
		ActionTimeout: cfg.Shell.ActionTimeout,
		Color:         cfg.Shell.Color,
	})
	if err != nil {
		return err
	}
	return sh.Run(ctx)
}

func newRecorder(ctx context.Context, cfg *config.Config, log *slog.Logger) (*core.Recorder, error) {
	journal, err := storage.Open(storage.Options{
		Backend:       cfg.Journal.Backend,
		Path:          cfg.Journal.Path,
		RedisAddr:     cfg.Journal.Redis.Addr,
		RedisPassword: cfg.Journal.Redis.Password,
		RedisDB:       cfg.Journal.Redis.DB,
		RedisPrefix:   cfg.Journal.Redis.Prefix,
		RedisTTL:      cfg.Journal.Redis.TTL,
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	log.Info("journal ready", "backend", cfg.Journal.Backend)

	policy, err := retry.New(cfg.Retry.Strategy, cfg.Retry.InitialDelay, cfg.Retry.MaxDelay, cfg.Retry.MaxAttempts)
	if err != nil {
		journal.Close()
		return nil, err
	}

	if !cfg.Transport.Enabled {
		return core.NewRecorder(journal, policy, log)
	}

	r := cfg.Transport.Redis
	tr, err := transport.NewRedisTransport(ctx, r.Addr, r.Password, r.DB, r.Prefix)
	if err != nil {
		journal.Close()
		return nil, fmt.Errorf("connect transport: %w", err)
	}
	log.Info("broadcasting task events", "channel", tr.Channel())
	return core.NewRecorderWithTransport(journal, tr, policy, log)
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"brandpulse/internal/config"
	"brandpulse/internal/console"
	"brandpulse/internal/gateway"
	"brandpulse/internal/notify"
	"brandpulse/internal/publisher"
	"brandpulse/internal/router"
	"brandpulse/internal/scheduler"
)

// Set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "brandpulse",
	Short:         "Track media sentiment for a company or keyword",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			cfg.LogLevel = level
		}
		logger = setupLogger(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		logger.Info("starting brandpulse console",
			"backend", cfg.API.BaseURL,
			"notification_ttl", cfg.Notifications.TTL,
			"publisher", cfg.RabbitMQ.Enabled(),
		)

		go func() {
			if err := a.sweeper.Start(ctx); err != nil && err != context.Canceled {
				logger.Error("sweeper error", "error", err)
			}
		}()

		errCh := make(chan error, 1)
		go func() { errCh <- a.console.Run(ctx) }()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			return nil
		}
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search recent news for a keyword and print the sentiment breakdown",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce("search " + strings.Join(args, " "))
	},
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Print the saved articles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce("watchlist")
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <headline>",
	Short: "Classify the sentiment of a single headline",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce("analyze " + strings.Join(args, " "))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that the backend is reachable",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnce("status")
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// Skips config loading.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("brandpulse %s (%s)\n", version, commit)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(watchlistCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// runOnce executes a single console command and exits.
func runOnce(line string) error {
	ctx, cancel := signalContext()
	defer cancel()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	return a.console.Exec(ctx, line)
}

type app struct {
	console   *console.Console
	sweeper   *scheduler.Scheduler
	publisher *publisher.RabbitMQ
}

func newApp() (*app, error) {
	gatewayCfg := gateway.Config{
		BaseURL:        cfg.API.BaseURL,
		Timeout:        cfg.API.Timeout,
		MaxAttempts:    cfg.API.Retry.MaxAttempts,
		InitialBackoff: cfg.API.Retry.InitialBackoff,
		MaxBackoff:     cfg.API.Retry.MaxBackoff,
	}
	if b := cfg.API.Breaker; b.Enabled {
		gatewayCfg.Breaker = &gateway.BreakerConfig{
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			FailureThreshold: b.FailureThreshold,
			MinRequests:      b.MinRequests,
		}
	}
	client := gateway.New(gatewayCfg, logger)

	renderer := console.NewRenderer(os.Stdout)
	emitter := notify.NewEmitter(notify.Config{
		TTL:       cfg.Notifications.TTL,
		MaxActive: cfg.Notifications.MaxActive,
	}, logger, renderer)

	a := &app{
		sweeper: scheduler.NewScheduler(emitter, cfg.Notifications.SweepInterval, logger),
	}

	if cfg.RabbitMQ.Enabled() {
		pub, err := publisher.NewRabbitMQ(publisher.Config{
			URL:        cfg.RabbitMQ.URL,
			Exchange:   cfg.RabbitMQ.Exchange,
			RoutingKey: cfg.RabbitMQ.RoutingKey,
			QueueName:  cfg.RabbitMQ.QueueName,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("connect notification publisher: %w", err)
		}
		a.publisher = pub
		emitter.AddSink(pub)
	}

	r := router.New(client, emitter, logger)
	a.console = console.New(r, emitter, client, renderer, os.Stdin, logger)

	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Warn("failed to close publisher", "error", err)
		}
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	// stdout belongs to the console.
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

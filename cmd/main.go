package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/website-monitor/config"
	"github.com/angeloszaimis/website-monitor/internal/cancellation"
	"github.com/angeloszaimis/website-monitor/internal/circuitbreaker"
	"github.com/angeloszaimis/website-monitor/internal/healthcheck"
	"github.com/angeloszaimis/website-monitor/internal/httpserver"
	"github.com/angeloszaimis/website-monitor/internal/metrics"
	"github.com/angeloszaimis/website-monitor/internal/monitor"
	"github.com/angeloszaimis/website-monitor/internal/report"
	"github.com/angeloszaimis/website-monitor/pkg/logger"
)

const eventBufferSize = 1024

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	config.RegisterFlags(flags)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [url...]\n", os.Args[0])
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, false, cfg.Server.Environment, os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("Monitor failed", slog.Any("err", err))
		os.Exit(1)
	}
}

// run checks the configured targets once, or repeatedly in watch mode, and
// prints every pass to out. When a metrics address is configured the
// endpoint is served for as long as the monitor runs.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger, out io.Writer) error {
	monCfg, err := buildMonitorConfig(cfg)
	if err != nil {
		return err
	}

	interval, err := watchInterval(cfg)
	if err != nil {
		return err
	}

	factory, err := buildProberFactory(cfg, monCfg)
	if err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)

	collector := metrics.NewCollector(eventBufferSize, log)
	collector.Start(gctx)

	if cfg.Metrics.Address != "" {
		srv, err := httpserver.New(cfg.Metrics.Address, setupRouter(collector))
		if err != nil {
			return fmt.Errorf("create metrics server: %w", err)
		}

		log.Info("Serving metrics", slog.String("address", cfg.Metrics.Address))
		g.Go(func() error {
			return srv.Run(gctx)
		})
	}

	mon := monitor.New(monCfg,
		monitor.WithLogger(log),
		monitor.WithProberFactory(factory),
		monitor.WithEvents(collector.EventChannel()),
	)
	printer := report.New(out, cfg.Output.Format, cfg.Output.Color)

	g.Go(func() error {
		// The metrics server only lives as long as the monitor.
		defer stop()

		if interval > 0 {
			log.Info("Watching targets",
				slog.Int("targets", len(cfg.Targets)),
				slog.Duration("interval", interval))

			return mon.Watch(gctx, cfg.Targets, interval, func(records []monitor.StatusRecord) {
				if err := printer.Print(records); err != nil {
					log.Error("Failed to print report", slog.Any("err", err))
				}
			})
		}

		token := cancellation.New()
		release := token.SignalOnDone(gctx)
		defer release()

		records, err := mon.Run(cfg.Targets, token)
		if err != nil {
			return err
		}

		return printer.Print(records)
	})

	return g.Wait()
}

func buildMonitorConfig(cfg *config.Config) (monitor.Config, error) {
	requestTimeout, err := time.ParseDuration(cfg.Monitor.RequestTimeout)
	if err != nil {
		return monitor.Config{}, fmt.Errorf("parse request timeout: %w", err)
	}

	retryBackoff, err := time.ParseDuration(cfg.Monitor.RetryBackoff)
	if err != nil {
		return monitor.Config{}, fmt.Errorf("parse retry backoff: %w", err)
	}

	pollInterval, err := time.ParseDuration(cfg.Monitor.PollInterval)
	if err != nil {
		return monitor.Config{}, fmt.Errorf("parse poll interval: %w", err)
	}

	return monitor.Config{
		Workers:        cfg.Monitor.Workers,
		RequestTimeout: requestTimeout,
		MaxRetries:     cfg.Monitor.MaxRetries,
		RetryBackoff:   retryBackoff,
		PollInterval:   pollInterval,
		MaxRedirects:   cfg.Monitor.MaxRedirects,
	}, nil
}

// watchInterval returns zero when watch mode is off.
func watchInterval(cfg *config.Config) (time.Duration, error) {
	if cfg.Watch.Interval == "" {
		return 0, nil
	}

	interval, err := time.ParseDuration(cfg.Watch.Interval)
	if err != nil {
		return 0, fmt.Errorf("parse watch interval: %w", err)
	}

	return interval, nil
}

// buildProberFactory returns the HTTP prober factory, guarded by a circuit
// breaker per target when a breaker threshold is configured.
func buildProberFactory(cfg *config.Config, monCfg monitor.Config) (healthcheck.Factory, error) {
	factory := healthcheck.HTTPFactory(monCfg.RequestTimeout, monCfg.MaxRedirects)

	breaker := cfg.Monitor.CircuitBreaker
	if breaker.Threshold <= 0 {
		return factory, nil
	}

	resetTimeout, err := time.ParseDuration(breaker.ResetTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse circuit breaker reset timeout: %w", err)
	}

	registry := circuitbreaker.NewRegistry(breaker.Threshold, resetTimeout)
	return circuitbreaker.GuardFactory(factory, registry), nil
}

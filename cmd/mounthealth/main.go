package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moby/sys/mountinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/config"
	"github.com/Vehask/plex-mount-health/internal/domain/health"
	"github.com/Vehask/plex-mount-health/internal/monitor"
	"github.com/Vehask/plex-mount-health/internal/notifier"
	"github.com/Vehask/plex-mount-health/internal/obs"
	"github.com/Vehask/plex-mount-health/internal/probe"
)

const serviceName = "mount-health"

type app struct {
	cfg    *config.Config
	log    *zap.Logger
	mailer *notifier.Mailer
	runner *monitor.Runner
}

func bootstrap(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := obs.NewLogger(cfg.Log, serviceName)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	clock := health.SystemClock()
	mailer := notifier.New(cfg.SMTP, cfg.Monitor.DryRun, clock, log)

	probes := []health.Prober{
		&probe.Mount{Path: cfg.Mount.Path},
		&probe.Access{Path: cfg.Mount.Path},
		&probe.ReadWrite{
			Path:   cfg.Mount.Path,
			Dir:    cfg.Mount.TestDir,
			File:   cfg.Mount.TestFile,
			DryRun: cfg.Monitor.DryRun,
			Clock:  clock,
			Log:    log,
		},
		&probe.Subdirs{Path: cfg.Mount.Path, Required: cfg.Mount.RequiredDirs},
	}

	eval := monitor.NewEvaluator(probes, clock, log)
	policy := health.Policy{
		FailureThreshold: cfg.Monitor.FailureThreshold,
		AlertCooldown:    cfg.Monitor.AlertCooldown,
		TestInterval:     cfg.Monitor.TestInterval,
		AlertsEnabled:    cfg.SMTP.Enabled,
	}
	runner := monitor.NewRunner(log, eval, mailer, clock, policy, cfg.Monitor.Interval, prometheus.DefaultRegisterer)
	runner.TestOnStartup = cfg.Monitor.SendTestOnStartup

	return &app{cfg: cfg, log: log, mailer: mailer, runner: runner}, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "mounthealth",
		Short:         "Monitors a storage mount and alerts by email when it degrades",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runContinuous(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mounthealth.yaml", "path to configuration file")

	rootCmd.AddCommand(newCheckCmd(&configPath))
	rootCmd.AddCommand(newTestEmailCmd(&configPath))
	rootCmd.AddCommand(newVerifySMTPCmd(&configPath))
	return rootCmd
}

func runContinuous(configPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	a.log.Info("starting mount health monitor",
		zap.String("mount_path", a.cfg.Mount.Path),
		zap.Duration("interval", a.cfg.Monitor.Interval),
		zap.Bool("dry_run", a.cfg.Monitor.DryRun),
	)

	otelCloser, err := obs.SetupOTel(ctx, a.cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel init: %w", err)
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	if addr := a.cfg.Server.MetricsAddr; addr != "" {
		mountPath := a.cfg.Mount.Path
		ms := obs.BootstrapMetricsServer(addr, func(ctx context.Context) error {
			mounted, err := mountinfo.Mounted(mountPath)
			if err != nil {
				return err
			}
			if !mounted {
				return fmt.Errorf("%s is not mounted", mountPath)
			}
			return nil
		}, a.log)
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = ms.Shutdown(shCtx)
		}()
	}

	if err := a.runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newCheckCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run a single health check cycle; exit status reflects pass/fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			if !a.runner.RunOnce(cmd.Context()) {
				_ = a.log.Sync()
				os.Exit(1)
			}
			return nil
		},
	}
}

func newTestEmailCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "test-email",
		Short: "Send one test notification and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			if err := a.runner.SendTestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			return nil
		},
	}
}

func newVerifySMTPCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "verify-smtp",
		Short: "Verify SMTP connectivity without sending a message",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()

			if err := a.mailer.Verify(cmd.Context()); err != nil {
				return fmt.Errorf("smtp verification failed: %w", err)
			}
			a.log.Info("smtp verification passed")
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

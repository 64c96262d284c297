package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Runner drives the evaluator and the alert state machine on a fixed
// interval. One cycle always runs to completion: all probes, then gating,
// then at most one alert dispatch. Cancellation happens between cycles.
type Runner struct {
	Log    *zap.Logger
	Eval   *Evaluator
	Notify health.Notifier
	Clock  health.Clock

	Policy        health.Policy
	Interval      time.Duration
	TestOnStartup bool

	state health.AlertState

	mCycles    prometheus.Counter
	mFailures  prometheus.Counter
	mAlerts    prometheus.Counter
	mTests     prometheus.Counter
	mNotifyErr prometheus.Counter
	mCycleDur  prometheus.Histogram
}

func NewRunner(log *zap.Logger, eval *Evaluator, notify health.Notifier, clock health.Clock, policy health.Policy, interval time.Duration, reg prometheus.Registerer) *Runner {
	m := promauto.With(reg)
	return &Runner{
		Log:      log.With(zap.String("component", "monitor.runner")),
		Eval:     eval,
		Notify:   notify,
		Clock:    clock,
		Policy:   policy,
		Interval: interval,
		mCycles: m.NewCounter(prometheus.CounterOpts{
			Name: "mounthealth_cycles_total", Help: "Monitoring cycles completed",
		}),
		mFailures: m.NewCounter(prometheus.CounterOpts{
			Name: "mounthealth_cycle_failures_total", Help: "Cycles with at least one failed probe",
		}),
		mAlerts: m.NewCounter(prometheus.CounterOpts{
			Name: "mounthealth_alerts_sent_total", Help: "Alert notifications dispatched",
		}),
		mTests: m.NewCounter(prometheus.CounterOpts{
			Name: "mounthealth_test_notifications_sent_total", Help: "Test notifications dispatched",
		}),
		mNotifyErr: m.NewCounter(prometheus.CounterOpts{
			Name: "mounthealth_notify_errors_total", Help: "Notification delivery errors",
		}),
		mCycleDur: m.NewHistogram(prometheus.HistogramOpts{
			Name: "mounthealth_cycle_duration_seconds", Help: "Monitoring cycle duration",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// RunOnce executes a single cycle and reports whether it passed.
func (r *Runner) RunOnce(ctx context.Context) bool {
	return r.cycle(ctx)
}

func (r *Runner) cycle(ctx context.Context) bool {
	start := time.Now()
	defer func() { r.mCycleDur.Observe(time.Since(start).Seconds()) }()

	rep := r.safeEvaluate(ctx)
	now := r.Clock.Now()

	var dec health.Decision
	r.state, dec = Advance(r.state, rep.AllPassed, now, r.Policy)

	r.mCycles.Inc()
	if rep.AllPassed {
		r.Log.Info("mount health check passed")
	} else {
		r.mFailures.Inc()
		r.Log.Warn("mount health check failed",
			zap.Int("consecutive_failures", r.state.ConsecutiveFailures),
			zap.Int("failure_threshold", r.Policy.FailureThreshold))
	}

	if dec.Alert {
		r.dispatchAlert(ctx, rep, now)
	} else if !rep.AllPassed && r.state.ConsecutiveFailures >= r.Policy.FailureThreshold {
		r.Log.Info("alert suppressed",
			zap.Bool("alerts_enabled", r.Policy.AlertsEnabled),
			zap.Duration("cooldown", r.Policy.AlertCooldown))
	}

	if dec.Test {
		r.dispatchTest(ctx, now)
	}

	return rep.AllPassed
}

// safeEvaluate is the single-check boundary: any fault not already absorbed
// by a probe is logged and counted as a failed cycle instead of killing the
// loop.
func (r *Runner) safeEvaluate(ctx context.Context) (rep *health.CycleReport) {
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error("unexpected error during health check", zap.Any("panic", p))
			rep = &health.CycleReport{
				Results: []health.ProbeResult{{
					Name:    "health-check",
					Message: fmt.Sprintf("unexpected error during health check: %v", p),
				}},
				At: r.Clock.Now(),
			}
		}
	}()
	return r.Eval.Evaluate(ctx)
}

func (r *Runner) dispatchAlert(ctx context.Context, rep *health.CycleReport, now time.Time) {
	subject := fmt.Sprintf("Mount health check failed (%d consecutive failures)", r.state.ConsecutiveFailures)
	body := "The following mount health checks were run:\n\n" + formatResults(rep.Results)

	// The cooldown starts at the attempt, success or not.
	r.state = MarkAlertSent(r.state, now)

	if err := r.Notify.Send(ctx, subject, body, false); err != nil {
		r.mNotifyErr.Inc()
		r.Log.Error("failed to send alert notification", zap.Error(err))
		return
	}
	r.mAlerts.Inc()
	r.Log.Info("alert notification sent",
		zap.Int("consecutive_failures", r.state.ConsecutiveFailures))
}

func (r *Runner) dispatchTest(ctx context.Context, now time.Time) {
	r.state = MarkTestSent(r.state, now)

	if err := r.SendTestNotification(ctx); err != nil {
		r.mNotifyErr.Inc()
		r.Log.Error("failed to send test notification", zap.Error(err))
		return
	}
	r.mTests.Inc()
}

// SendTestNotification sends one test message through the notifier. Used by
// the periodic test timer, the startup option, and the test-email CLI mode.
func (r *Runner) SendTestNotification(ctx context.Context) error {
	return r.Notify.Send(ctx,
		"Test notification from mount health monitor",
		"This is a test notification to verify the mount health monitor can deliver alerts.",
		true)
}

// Run loops until the context is cancelled. The first cycle runs
// immediately; after that the interval ticker paces the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.Log.Info("starting continuous mount health monitoring",
		zap.Duration("interval", r.Interval))

	if r.TestOnStartup {
		r.Log.Info("sending startup test notification")
		if err := r.SendTestNotification(ctx); err != nil {
			r.mNotifyErr.Inc()
			r.Log.Error("startup test notification failed", zap.Error(err))
		} else {
			r.state = MarkTestSent(r.state, r.Clock.Now())
			r.mTests.Inc()
		}
	}

	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.cycle(ctx)

	for {
		select {
		case <-ctx.Done():
			r.Log.Info("mount health monitoring stopped")
			return ctx.Err()
		case <-ticker.C:
			r.cycle(ctx)
		}
	}
}

func formatResults(results []health.ProbeResult) string {
	var b strings.Builder
	for _, res := range results {
		status := "PASS"
		if !res.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "%s: %s - %s\n", res.Name, status, res.Message)
	}
	return b.String()
}

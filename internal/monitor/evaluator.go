package monitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Vehask/plex-mount-health/internal/domain/health"
)

// Evaluator runs the probe set in fixed order, every cycle, with no early
// exit, so a single report always covers every dimension of mount health.
// It performs no I/O of its own.
type Evaluator struct {
	probes []health.Prober
	clock  health.Clock
	log    *zap.Logger
}

func NewEvaluator(probes []health.Prober, clock health.Clock, log *zap.Logger) *Evaluator {
	return &Evaluator{
		probes: probes,
		clock:  clock,
		log:    log.With(zap.String("component", "monitor.evaluator")),
	}
}

func (e *Evaluator) Evaluate(ctx context.Context) *health.CycleReport {
	tr := otel.Tracer("monitor.evaluator")
	ctx, span := tr.Start(ctx, "monitor.cycle",
		trace.WithAttributes(attribute.Int("probes.count", len(e.probes))),
	)
	defer span.End()

	rep := &health.CycleReport{
		Results:   make([]health.ProbeResult, 0, len(e.probes)),
		AllPassed: true,
		At:        e.clock.Now(),
	}

	for _, p := range e.probes {
		res := runProbe(ctx, p)
		rep.Results = append(rep.Results, res)
		if res.Passed {
			e.log.Info("probe passed",
				zap.String("probe", res.Name), zap.String("message", res.Message))
		} else {
			rep.AllPassed = false
			e.log.Error("probe failed",
				zap.String("probe", res.Name), zap.String("message", res.Message))
		}
	}

	span.SetAttributes(attribute.Bool("cycle.all_passed", rep.AllPassed))
	return rep
}

// runProbe shields the evaluator from a panicking probe: an unexpected fault
// becomes a failed result and drives the failure counter like any other.
func runProbe(ctx context.Context, p health.Prober) (res health.ProbeResult) {
	defer func() {
		if r := recover(); r != nil {
			res = health.ProbeResult{
				Name:    p.Name(),
				Message: fmt.Sprintf("unexpected fault during probe: %v", r),
			}
		}
	}()
	return p.Check(ctx)
}

package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Runner executes runs. It holds no per-run state, so one Runner can serve
// concurrent runs as long as its Discoverer and Integrator are safe for
// concurrent use.
type Runner struct {
	Discoverer Discoverer
	Integrator Integrator
	Logger     *log.Logger
}

// NewRunner creates a runner. A nil logger uses log.Default().
func NewRunner(d Discoverer, in Integrator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Discoverer: d, Integrator: in, Logger: logger}
}

// Run performs load, discover and integrate. The only error it returns is
// the context's, when the run was cut short; partial results are still
// returned in the report.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		StartedAt:  time.Now(),
		DryRun:     opts.DryRun,
		Integrated: []string{},
		Skipped:    []string{},
	}
	logger := r.Logger.With("run", report.RunID[:8])

	if opts.LoadMapping {
		if err := r.Integrator.Load(); err != nil {
			logger.Debug("continuing with current mapping", "error", err)
		}
	}

	// Stage 1: Discover
	start := time.Now()
	if opts.Records != nil {
		report.Records = opts.Records
	} else {
		report.Records = r.Discoverer.Discover(ctx)
	}
	report.Stats.DiscoverTime = time.Since(start)
	logger.Info("discovered APIs", "count", len(report.Records), "duration", report.Stats.DiscoverTime)

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("discover: %w", err)
	}

	// Stage 2: Integrate
	start = time.Now()
	for _, rec := range report.Records {
		if err := ctx.Err(); err != nil {
			report.Stats.IntegrateTime = time.Since(start)
			return report, fmt.Errorf("integrate: %w", err)
		}

		if opts.DryRun {
			if t, ok := r.Integrator.Lookup(rec); ok {
				report.Planned = append(report.Planned, Planned{Name: rec.Name, Type: t})
			} else {
				report.Skipped = append(report.Skipped, rec.Name)
			}
			continue
		}

		ran, err := r.Integrator.Integrate(ctx, rec)
		switch {
		case err != nil:
			logger.Error("integration failed", "name", rec.Name, "error", err)
			report.Errors = append(report.Errors, HookError{Name: rec.Name, Error: err.Error()})
		case ran:
			report.Integrated = append(report.Integrated, rec.Name)
		default:
			report.Skipped = append(report.Skipped, rec.Name)
		}
	}
	report.Stats.IntegrateTime = time.Since(start)

	logger.Info("integrated APIs",
		"integrated", len(report.Integrated),
		"planned", len(report.Planned),
		"skipped", len(report.Skipped),
		"failed", len(report.Errors),
		"duration", report.Stats.IntegrateTime)
	return report, nil
}

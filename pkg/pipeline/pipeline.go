// Package pipeline connects discovery and integration.
//
// # Overview
//
// A run is the fetch-parse-merge sequence the CLI and the HTTP server both
// perform:
//
//  1. Load: read the integration mapping from disk (optional)
//  2. Discover: query every registry, in order
//  3. Integrate: for each discovered record, dispatch the hook configured
//     for its name
//
// Registry failures never fail a run; they only shrink the record list.
// Hook errors are collected in the [Report] rather than aborting the run.
//
// # Usage
//
//	runner := pipeline.NewRunner(engine, integrator, logger)
//	report, err := runner.Run(ctx, pipeline.RunOptions{LoadMapping: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(report.Integrated)
package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

// Discoverer produces API records. *discovery.Engine implements it.
type Discoverer interface {
	Discover(ctx context.Context) []catalog.APIRecord
}

// Integrator applies configuration to records. *integration.Integrator
// implements it.
type Integrator interface {
	Load() error
	Lookup(record catalog.APIRecord) (catalog.SpecType, bool)
	Integrate(ctx context.Context, record catalog.APIRecord) (bool, error)
}

// RunOptions controls a single run.
type RunOptions struct {
	// LoadMapping re-reads the mapping file before integrating. A missing or
	// broken file is logged and the current mapping is used.
	LoadMapping bool

	// DryRun reports which hooks would run without running them.
	DryRun bool

	// Records skips discovery and integrates these records instead.
	Records []catalog.APIRecord
}

// HookError is a failed integration.
type HookError struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Planned is a record a dry run would dispatch.
type Planned struct {
	Name string           `json:"name"`
	Type catalog.SpecType `json:"type"`
}

// Stats holds timing for the stages of a run.
type Stats struct {
	DiscoverTime  time.Duration `json:"discover_time"`
	IntegrateTime time.Duration `json:"integrate_time"`
}

// Report describes a completed run.
type Report struct {
	RunID      string              `json:"run_id"`
	StartedAt  time.Time           `json:"started_at"`
	DryRun     bool                `json:"dry_run"`
	Records    []catalog.APIRecord `json:"records"`
	Integrated []string            `json:"integrated"`
	Planned    []Planned           `json:"planned,omitempty"`
	Skipped    []string            `json:"skipped"`
	Errors     []HookError         `json:"errors,omitempty"`
	Stats      Stats               `json:"stats"`
}

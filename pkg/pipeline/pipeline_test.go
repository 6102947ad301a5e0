package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/apiscout/pkg/catalog"
	"github.com/matzehuels/apiscout/pkg/integration"
)

type staticDiscoverer struct {
	records []catalog.APIRecord
	calls   int
}

func (d *staticDiscoverer) Discover(context.Context) []catalog.APIRecord {
	d.calls++
	return d.records
}

func records(names ...string) []catalog.APIRecord {
	out := make([]catalog.APIRecord, len(names))
	for i, n := range names {
		out[i] = catalog.APIRecord{Name: n}
	}
	return out
}

func newIntegrator(t *testing.T, mapping string, opts ...integration.Option) *integration.Integrator {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api_mapping.json")
	if err := os.WriteFile(path, []byte(mapping), 0o644); err != nil {
		t.Fatal(err)
	}
	opts = append([]integration.Option{integration.WithLogger(log.New(&bytes.Buffer{}))}, opts...)
	return integration.New(path, opts...)
}

func quietLogger() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func TestRun(t *testing.T) {
	var hooked []string
	hook := integration.HookFunc(func(_ context.Context, rec catalog.APIRecord, _ integration.Config) error {
		hooked = append(hooked, rec.Name)
		if rec.Name == "broken" {
			return errors.New("generator failed")
		}
		return nil
	})
	in := newIntegrator(t,
		`{"pets": {"type": "openapi"}, "crm": {"type": "swagger"}, "broken": {"type": "openapi"}}`,
		integration.WithHook(catalog.SpecOpenAPI, hook),
		integration.WithHook(catalog.SpecSwagger, hook),
	)
	d := &staticDiscoverer{records: records("pets", "weather", "crm", "broken")}

	report, err := NewRunner(d, in, quietLogger()).Run(context.Background(), RunOptions{LoadMapping: true})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if _, err := uuid.Parse(report.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", report.RunID, err)
	}
	if len(report.Records) != 4 {
		t.Errorf("Records = %d, want 4", len(report.Records))
	}
	if !slices.Equal(report.Integrated, []string{"pets", "crm"}) {
		t.Errorf("Integrated = %v", report.Integrated)
	}
	if !slices.Equal(report.Skipped, []string{"weather"}) {
		t.Errorf("Skipped = %v", report.Skipped)
	}
	if len(report.Errors) != 1 || report.Errors[0].Name != "broken" || !strings.Contains(report.Errors[0].Error, "generator failed") {
		t.Errorf("Errors = %+v", report.Errors)
	}
	if !slices.Equal(hooked, []string{"pets", "crm", "broken"}) {
		t.Errorf("hooks ran for %v", hooked)
	}
}

func TestRunDryRun(t *testing.T) {
	called := false
	in := newIntegrator(t, `{"pets": {"type": "openapi"}, "odd": {"type": "rest"}}`,
		integration.WithHook(catalog.SpecOpenAPI, integration.HookFunc(
			func(context.Context, catalog.APIRecord, integration.Config) error {
				called = true
				return nil
			})))
	d := &staticDiscoverer{records: records("pets", "odd", "unknown")}

	report, err := NewRunner(d, in, quietLogger()).Run(context.Background(), RunOptions{LoadMapping: true, DryRun: true})
	if err != nil {
		t.Fatal(err)
	}
	if called {
		t.Error("dry run must not call hooks")
	}
	if len(report.Planned) != 1 || report.Planned[0] != (Planned{Name: "pets", Type: catalog.SpecOpenAPI}) {
		t.Errorf("Planned = %+v", report.Planned)
	}
	if len(report.Integrated) != 0 || !slices.Equal(report.Skipped, []string{"odd", "unknown"}) {
		t.Errorf("Integrated/Skipped = %v/%v", report.Integrated, report.Skipped)
	}
}

func TestRunWithRecords(t *testing.T) {
	in := newIntegrator(t, `{"pets": {"type": "openapi"}}`)
	in.LoadConfig()
	d := &staticDiscoverer{}

	report, err := NewRunner(d, in, quietLogger()).Run(context.Background(), RunOptions{Records: records("pets")})
	if err != nil {
		t.Fatal(err)
	}
	if d.calls != 0 {
		t.Error("discovery should be skipped when records are given")
	}
	if !slices.Equal(report.Integrated, []string{"pets"}) {
		t.Errorf("Integrated = %v", report.Integrated)
	}
}

func TestRunMissingMapping(t *testing.T) {
	in := integration.New(filepath.Join(t.TempDir(), "missing.json"), integration.WithLogger(quietLogger()))
	d := &staticDiscoverer{records: records("a", "b")}

	report, err := NewRunner(d, in, quietLogger()).Run(context.Background(), RunOptions{LoadMapping: true})
	if err != nil {
		t.Fatalf("missing mapping should not fail the run: %v", err)
	}
	if len(report.Integrated) != 0 || len(report.Skipped) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestRunCancelled(t *testing.T) {
	in := newIntegrator(t, `{}`)
	d := &staticDiscoverer{records: records("a")}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewRunner(d, in, quietLogger()).Run(ctx, RunOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if report == nil || report.RunID == "" {
		t.Error("a cancelled run should still return its report")
	}
}

package integration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apiscout/pkg/catalog"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/observability"
)

// Integrator holds the integration mapping and the hook table used to apply
// it. It is safe for concurrent use.
type Integrator struct {
	path   string
	logger *log.Logger

	mu      sync.RWMutex
	mapping Mapping
	hooks   map[catalog.SpecType]Hook
}

// Option configures an Integrator.
type Option func(*Integrator)

// WithLogger sets the logger used for load, save and hook messages.
func WithLogger(l *log.Logger) Option {
	return func(in *Integrator) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithHook registers h for spec type t, replacing the default hook.
// A nil h disables integration for t.
func WithHook(t catalog.SpecType, h Hook) Option {
	return func(in *Integrator) {
		in.hooks[t] = h
	}
}

// New creates an Integrator for the mapping file at path (DefaultPath if
// empty). The mapping starts empty; call Load or LoadConfig to read the file.
func New(path string, opts ...Option) *Integrator {
	if path == "" {
		path = DefaultPath
	}
	in := &Integrator{
		path:    path,
		logger:  log.Default(),
		mapping: Mapping{},
		hooks:   make(map[catalog.SpecType]Hook),
	}
	for _, opt := range opts {
		opt(in)
	}
	for _, t := range catalog.SpecTypes {
		if _, ok := in.hooks[t]; !ok {
			in.hooks[t] = logHook{logger: in.logger, label: t.Label()}
		}
	}
	return in
}

// Path returns the mapping file path.
func (in *Integrator) Path() string {
	return in.path
}

// Load reads the mapping file and replaces the in-memory mapping.
// On any failure the current mapping is kept, the failure is logged, and a
// coded error is returned: ErrCodeConfigNotFound for a missing file and
// ErrCodeConfigParse for unreadable or invalid JSON.
func (in *Integrator) Load() error {
	m, skipped, err := readMapping(in.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			in.logger.Warn("configuration file not found", "path", in.path)
			return apierrors.Wrap(apierrors.ErrCodeConfigNotFound, err, "configuration file not found: %s", in.path)
		}
		in.logger.Error("failed to load configuration", "path", in.path, "error", err)
		return apierrors.Wrap(apierrors.ErrCodeConfigParse, err, "load configuration %s", in.path)
	}
	for _, name := range skipped {
		in.logger.Warn("skipping configuration that is not an object", "name", name, "path", in.path)
	}

	in.mu.Lock()
	in.mapping = m
	in.mu.Unlock()

	in.logger.Debug("loaded configuration", "path", in.path, "apis", len(m))
	return nil
}

// LoadConfig is Load without the error: failures are only logged.
func (in *Integrator) LoadConfig() {
	_ = in.Load()
}

// Set stores cfg under name and rewrites the mapping file with the whole
// in-memory mapping. The in-memory change is kept even if the write fails.
// Any string is accepted as a name; callers taking names from users should
// check them with errors.ValidateAPIName first.
func (in *Integrator) Set(name string, cfg Config) error {
	in.mu.Lock()
	defer in.mu.Unlock()

	in.mapping[name] = cfg.Clone()
	if err := writeMapping(in.path, in.mapping); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeConfigWrite, err, "save configuration %s", in.path)
	}
	return nil
}

// UpdateConfig is Set without the error: failures are logged, success is
// logged as "Updated config for <name>".
func (in *Integrator) UpdateConfig(name string, cfg Config) {
	if err := in.Set(name, cfg); err != nil {
		in.logger.Error("failed to update config", "name", name, "error", err)
		return
	}
	in.logger.Info(fmt.Sprintf("Updated config for %s", name))
}

// Get returns a copy of the configuration stored under name.
func (in *Integrator) Get(name string) (Config, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	cfg, ok := in.mapping[name]
	if !ok {
		return nil, false
	}
	return cfg.Clone(), true
}

// Names returns the configured API names in sorted order.
func (in *Integrator) Names() []string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	names := make([]string, 0, len(in.mapping))
	for name := range in.mapping {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Snapshot returns a deep copy of the current mapping.
func (in *Integrator) Snapshot() Mapping {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.mapping.Clone()
}

// Lookup reports which hook Integrate would run for record without running
// it. The returned type is SpecUnknown when nothing would be dispatched.
func (in *Integrator) Lookup(record catalog.APIRecord) (catalog.SpecType, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	cfg, ok := in.mapping[record.Name]
	if !ok {
		return catalog.SpecUnknown, false
	}
	t := cfg.Type()
	if h := in.hooks[t]; h == nil {
		return catalog.SpecUnknown, false
	}
	return t, true
}

// Integrate applies the configuration stored for record.Name by running the
// hook registered for its type. It reports whether a hook ran. Records with
// no configuration, or whose configured type has no hook, are skipped
// without error.
func (in *Integrator) Integrate(ctx context.Context, record catalog.APIRecord) (bool, error) {
	in.mu.RLock()
	cfg, ok := in.mapping[record.Name]
	var hook Hook
	var t catalog.SpecType
	if ok {
		t = cfg.Type()
		hook = in.hooks[t]
		cfg = cfg.Clone()
	}
	in.mu.RUnlock()

	if !ok {
		in.logger.Debug("no integration config", "name", record.Name)
		return false, nil
	}
	if hook == nil {
		in.logger.Debug("no hook for configured type", "name", record.Name, "type", cfg[TypeKey])
		return false, nil
	}

	err := hook.Integrate(ctx, record, cfg)
	observability.Discovery().OnIntegrate(ctx, record.Name, string(t), err)
	if err != nil {
		return true, fmt.Errorf("integrate %s: %w", record.Name, err)
	}
	return true, nil
}

package integration

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apiscout/pkg/catalog"
)

// Hook applies an integration configuration to a discovered API.
// cfg is a private copy and may be modified.
type Hook interface {
	Integrate(ctx context.Context, record catalog.APIRecord, cfg Config) error
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ctx context.Context, record catalog.APIRecord, cfg Config) error

func (f HookFunc) Integrate(ctx context.Context, record catalog.APIRecord, cfg Config) error {
	return f(ctx, record, cfg)
}

// logHook is the default hook: it announces the integration and does nothing else.
type logHook struct {
	logger *log.Logger
	label  string
}

func (h logHook) Integrate(_ context.Context, record catalog.APIRecord, _ Config) error {
	h.logger.Info(fmt.Sprintf("Integrating %s API", h.label), "name", record.Name)
	return nil
}

var (
	_ Hook = HookFunc(nil)
	_ Hook = logHook{}
)

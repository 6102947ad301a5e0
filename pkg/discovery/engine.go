package discovery

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apiscout/pkg/catalog"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/httputil"
	"github.com/matzehuels/apiscout/pkg/observability"
)

// DefaultRegistries are queried when Options.Registries is empty.
var DefaultRegistries = []string{
	"https://api.swaggerhub.com/v1/apis",
	"https://rapidapihub.com/api/endpoints",
}

const (
	// DefaultResolveURL is the endpoint requested by ResolveEndpoint; %s is the domain.
	DefaultResolveURL = "https://%s/api"

	formatSuffix = "?format=openapi"
)

// Options configures an [Engine].
type Options struct {
	Registries []string    // Registry URLs, queried in order (default DefaultRegistries)
	ResolveURL string      // fmt template with one %s for the domain (default DefaultResolveURL)
	Refresh    bool        // Bypass the client's response cache
	Logger     *log.Logger // Defaults to log.Default()
}

// Engine discovers APIs from registries and resolves API endpoints.
// It holds no state between calls besides the shared HTTP client.
type Engine struct {
	client     *httputil.Client
	registries []string
	resolveURL string
	refresh    bool
	logger     *log.Logger
}

// New creates an Engine. A nil client gets an uncached single-try client.
func New(client *httputil.Client, opts Options) *Engine {
	if client == nil {
		client = httputil.NewClient(httputil.Options{})
	}
	registries := opts.Registries
	if len(registries) == 0 {
		registries = DefaultRegistries
	}
	resolveURL := opts.ResolveURL
	if resolveURL == "" {
		resolveURL = DefaultResolveURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		client:     client,
		registries: append([]string(nil), registries...),
		resolveURL: resolveURL,
		refresh:    opts.Refresh,
		logger:     logger,
	}
}

// Registries returns a copy of the registry URLs in query order.
func (e *Engine) Registries() []string {
	return append([]string(nil), e.registries...)
}

// Discover queries every registry in order and returns the records found,
// preserving registry order and entry order within each registry. Registry
// failures are logged and skipped. Discover stops early only if ctx is done.
func (e *Engine) Discover(ctx context.Context) []catalog.APIRecord {
	var records []catalog.APIRecord
	for _, registry := range e.registries {
		if ctx.Err() != nil {
			e.logger.Warn("discovery cancelled", "error", ctx.Err())
			break
		}
		found, err := e.DiscoverRegistry(ctx, registry)
		if err != nil {
			e.logger.Error("failed to discover APIs", "registry", registry, "error", err)
			continue
		}
		records = append(records, found...)
	}
	return records
}

// DiscoverRegistry fetches a single registry and converts its "apis" entries
// to records. A body that is valid JSON but not an object, or an object
// without an "apis" list, yields no records and no error.
func (e *Engine) DiscoverRegistry(ctx context.Context, registry string) (records []catalog.APIRecord, err error) {
	hooks := observability.Discovery()
	hooks.OnRegistryStart(ctx, registry)
	start := time.Now()
	defer func() {
		hooks.OnRegistryComplete(ctx, registry, len(records), time.Since(start), err)
	}()

	var payload any
	if err := e.client.GetJSON(ctx, registry, e.refresh, &payload); err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeRegistry, err, "discover APIs from %s", registry)
	}

	entries, ok := apiEntries(payload)
	if !ok {
		e.logger.Debug("registry response has no apis list", "registry", registry)
		return nil, nil
	}

	records = make([]catalog.APIRecord, 0, len(entries))
	for i, item := range entries {
		entry, ok := item.(map[string]any)
		if !ok {
			e.logger.Warn("skipping malformed registry entry", "registry", registry, "index", i)
			continue
		}
		records = append(records, NewRecord(entry))
	}
	e.logger.Debug("discovered APIs", "registry", registry, "count", len(records))
	return records, nil
}

// ResolveEndpoint requests the API root of domain and returns the path of the
// Location header with "?format=openapi" appended. A response without a
// Location header yields just the suffix. Failures are logged and returned.
func (e *Engine) ResolveEndpoint(ctx context.Context, domain string) (string, error) {
	if err := apierrors.ValidateDomain(domain); err != nil {
		e.logger.Error("failed to get API endpoint", "domain", domain, "error", err)
		return "", err
	}

	target := fmt.Sprintf(e.resolveURL, domain)
	location, err := e.client.Location(ctx, target)
	if err != nil {
		e.logger.Error("failed to get API endpoint", "domain", domain, "error", err)
		return "", apierrors.Wrap(apierrors.ErrCodeResolve, err, "resolve endpoint for %s", domain)
	}

	u, err := url.Parse(location)
	if err != nil {
		e.logger.Error("invalid Location header", "domain", domain, "location", location, "error", err)
		return "", apierrors.Wrap(apierrors.ErrCodeResolve, err, "parse Location header for %s", domain)
	}
	return locationPath(u) + formatSuffix, nil
}

// locationPath returns the path of u as it appeared in the header, without
// decoding or re-encoding it.
func locationPath(u *url.URL) string {
	if u.RawPath != "" {
		return u.RawPath
	}
	return u.EscapedPath()
}

func apiEntries(payload any) ([]any, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	entries, ok := obj["apis"].([]any)
	return entries, ok
}

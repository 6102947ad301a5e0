// Package pkg provides the libraries behind apiscout.
//
// # Overview
//
// apiscout finds published API descriptions in registries and applies local
// integration configuration to them. The pkg directory is organized as:
//
//  1. [catalog] - The APIRecord and SpecInfo types shared by everything else
//  2. [discovery] - Registry queries and endpoint resolution
//  3. [integration] - The JSON mapping file and the per-type hook table
//  4. [pipeline] - Orchestration (load → discover → integrate)
//  5. [server] - The HTTP API over the pieces above
//  6. [httputil], [cache], [config], [errors], [observability] - Infrastructure
//
// # Architecture
//
//	Registry URLs
//	     ↓
//	[discovery] (GET, parse "apis", normalize)
//	     ↓
//	[]catalog.APIRecord
//	     ↓
//	[integration] (look up name in mapping, dispatch on "type")
//	     ↓
//	Hook (OpenAPI / Swagger)
//
// # Quick Start
//
//	client := httputil.NewClient(httputil.Options{})
//	engine := discovery.New(client, discovery.Options{})
//	in := integration.New("config/api_mapping.json")
//	in.LoadConfig()
//
//	for _, rec := range engine.Discover(ctx) {
//	    if _, err := in.Integrate(ctx, rec); err != nil {
//	        log.Error("integration failed", "name", rec.Name, "error", err)
//	    }
//	}
//
// [catalog]: github.com/matzehuels/apiscout/pkg/catalog
// [discovery]: github.com/matzehuels/apiscout/pkg/discovery
// [integration]: github.com/matzehuels/apiscout/pkg/integration
// [pipeline]: github.com/matzehuels/apiscout/pkg/pipeline
// [server]: github.com/matzehuels/apiscout/pkg/server
// [httputil]: github.com/matzehuels/apiscout/pkg/httputil
// [cache]: github.com/matzehuels/apiscout/pkg/cache
// [config]: github.com/matzehuels/apiscout/pkg/config
// [errors]: github.com/matzehuels/apiscout/pkg/errors
// [observability]: github.com/matzehuels/apiscout/pkg/observability
package pkg

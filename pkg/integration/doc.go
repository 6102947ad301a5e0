// Package integration applies per-API configuration to discovered APIs.
//
// # Overview
//
// An [Integrator] owns the integration mapping: a JSON object on disk that
// maps API names to free-form configuration objects. Each configuration
// carries a "type" field naming the API's spec format:
//
//	{
//	  "payments": {"type": "openapi", "base_path": "/v1"},
//	  "legacy-crm": {"type": "swagger"}
//	}
//
// [Integrator.Integrate] looks up a discovered [catalog.APIRecord] by name
// and runs the [Hook] registered for the configured type. Records without an
// entry, and entries with an unrecognized type, are left alone.
//
// # Persistence
//
// The mapping is read with [Integrator.Load] and written with
// [Integrator.Set]. Every write serializes the whole in-memory mapping and
// replaces the file atomically, so the file and the memory copy only diverge
// between a change and its write. [Integrator.LoadConfig] and
// [Integrator.UpdateConfig] are the logging variants: failures are reported
// through the logger and otherwise ignored.
//
// [Integrator.Watch] reloads the mapping whenever the file changes on disk.
//
// # Hooks
//
// The default hooks only log the integration. Replace them with [WithHook]:
//
//	in := integration.New("config/api_mapping.json",
//	    integration.WithHook(catalog.SpecOpenAPI, integration.HookFunc(
//	        func(ctx context.Context, rec catalog.APIRecord, cfg integration.Config) error {
//	            return generateClient(ctx, rec.Specs.URL, cfg)
//	        })),
//	)
package integration

// Package discovery finds third-party APIs listed by registry endpoints.
//
// # Overview
//
// An [Engine] queries each configured registry URL in order and expects a
// JSON object with an "apis" list. Every object in that list becomes a
// [catalog.APIRecord]:
//
//	engine := discovery.New(client, discovery.Options{Logger: logger})
//	records := engine.Discover(ctx)
//
// A registry that cannot be reached, answers with a non-2xx status, or
// returns an undecodable body is logged and skipped; the remaining registries
// still contribute their records. A response without an "apis" field
// contributes nothing.
//
// # Spec Detection
//
// [ParseSpecs] inspects an entry's "tags" list. "openapi" wins over
// "swagger"; either one copies "specUrl" into [catalog.SpecInfo.URL].
// "authType" and "limits" are always carried over, defaulting to "none" and
// an empty map.
//
// # Endpoint Resolution
//
// [Engine.ResolveEndpoint] requests https://{domain}/api without following
// redirects and turns the Location header into "<path>?format=openapi".
// Unlike Discover, it returns its error to the caller.
//
// [catalog.APIRecord]: github.com/matzehuels/apiscout/pkg/catalog.APIRecord
// [catalog.SpecInfo.URL]: github.com/matzehuels/apiscout/pkg/catalog.SpecInfo
package discovery

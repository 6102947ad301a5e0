package observability

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	d := NoopDiscoveryHooks{}
	d.OnRegistryStart(ctx, "https://api.swaggerhub.com/v1/apis")
	d.OnRegistryComplete(ctx, "https://api.swaggerhub.com/v1/apis", 3, time.Second, nil)
	d.OnIntegrate(ctx, "petstore", "openapi", nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "registry")
	c.OnCacheMiss(ctx, "registry")
	c.OnCacheSet(ctx, "registry", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.swaggerhub.com", "/v1/apis")
	h.OnResponse(ctx, "GET", "api.swaggerhub.com", "/v1/apis", 200, time.Second)
	h.OnError(ctx, "GET", "api.swaggerhub.com", "/v1/apis", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	defer Reset()

	if _, ok := Discovery().(NoopDiscoveryHooks); !ok {
		t.Error("Discovery() should return NoopDiscoveryHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customDiscovery := &testDiscoveryHooks{}
	SetDiscoveryHooks(customDiscovery)
	if Discovery() != customDiscovery {
		t.Error("SetDiscoveryHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Discovery().(NoopDiscoveryHooks); !ok {
		t.Error("Reset() should restore NoopDiscoveryHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testDiscoveryHooks{}
	SetDiscoveryHooks(custom)
	SetDiscoveryHooks(nil)

	if Discovery() != custom {
		t.Error("SetDiscoveryHooks(nil) should be ignored")
	}
}

func TestPrometheusHooks(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	h, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatalf("NewPrometheusHooks: %v", err)
	}

	h.OnRegistryComplete(ctx, "r1", 4, time.Millisecond, nil)
	h.OnRegistryComplete(ctx, "r1", 0, time.Millisecond, errors.New("boom"))
	h.OnIntegrate(ctx, "petstore", "openapi", nil)
	h.OnCacheHit(ctx, "registry")
	h.OnResponse(ctx, "GET", "example.com", "/api", 302, time.Millisecond)
	h.OnError(ctx, "GET", "example.com", "/api", errors.New("refused"))

	if got := testutil.ToFloat64(h.registryRecords.WithLabelValues("r1")); got != 4 {
		t.Errorf("registry records = %v, want 4", got)
	}
	if got := testutil.ToFloat64(h.registryRuns.WithLabelValues("r1", "error")); got != 1 {
		t.Errorf("registry errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(h.integrations.WithLabelValues("openapi", "ok")); got != 1 {
		t.Errorf("integrations = %v, want 1", got)
	}

	expected := `
# HELP apiscout_http_client_requests_total Outgoing HTTP requests by host and status.
# TYPE apiscout_http_client_requests_total counter
apiscout_http_client_requests_total{host="example.com",status="302"} 1
apiscout_http_client_requests_total{host="example.com",status="error"} 1
`
	if err := testutil.CollectAndCompare(h.httpRequests, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestPrometheusHooksDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusHooks(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewPrometheusHooks(reg); err == nil {
		t.Error("registering twice on the same registry should fail")
	}
}

type testDiscoveryHooks struct{ NoopDiscoveryHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

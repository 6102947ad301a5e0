package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/apiscout/pkg/catalog"
	apierrors "github.com/matzehuels/apiscout/pkg/errors"
	"github.com/matzehuels/apiscout/pkg/integration"
	"github.com/matzehuels/apiscout/pkg/pipeline"
)

type fakeDiscoverer struct {
	records  []catalog.APIRecord
	resolved map[string]string
}

func (f *fakeDiscoverer) Discover(context.Context) []catalog.APIRecord {
	return f.records
}

func (f *fakeDiscoverer) ResolveEndpoint(_ context.Context, domain string) (string, error) {
	if err := apierrors.ValidateDomain(domain); err != nil {
		return "", err
	}
	if ep, ok := f.resolved[domain]; ok {
		return ep, nil
	}
	return "", apierrors.Wrap(apierrors.ErrCodeResolve, errors.New("status 503"), "resolve endpoint for %s", domain)
}

func newTestServer(t *testing.T, mapping string, opts ...func(*Options)) (*httptest.Server, *integration.Integrator) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "api_mapping.json")
	if mapping != "" {
		if err := os.WriteFile(path, []byte(mapping), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	logger := log.New(&bytes.Buffer{})
	in := integration.New(path, integration.WithLogger(logger))
	in.LoadConfig()

	o := Options{
		Discoverer: &fakeDiscoverer{
			records: []catalog.APIRecord{
				{Name: "pets", Specs: catalog.SpecInfo{Type: catalog.SpecOpenAPI, Authentication: "none", RateLimits: map[string]any{}}},
				{Name: "weather", Specs: catalog.SpecInfo{Authentication: "none", RateLimits: map[string]any{}}},
			},
			resolved: map[string]string{"example.com": "/v2/spec?format=openapi"},
		},
		Integrator: in,
		Logger:     logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	srv := httptest.NewServer(New(o).Handler())
	t.Cleanup(srv.Close)
	return srv, in
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"ok"`)) {
		t.Errorf("GET /healthz = %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", resp.Header.Get("Content-Type"))
	}
}

func TestListAPIs(t *testing.T) {
	srv, _ := newTestServer(t, "")
	resp, body := do(t, http.MethodGet, srv.URL+"/apis", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var records []catalog.APIRecord
	if err := json.Unmarshal(body, &records); err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[0].Name != "pets" || records[0].Specs.Type != catalog.SpecOpenAPI {
		t.Errorf("records = %+v", records)
	}
	if !bytes.Contains(body, []byte(`"documentation_url"`)) {
		t.Errorf("records should use snake_case field names: %s", body)
	}
}

func TestListAPIsEmpty(t *testing.T) {
	srv, _ := newTestServer(t, "", func(o *Options) { o.Discoverer = &fakeDiscoverer{} })
	_, body := do(t, http.MethodGet, srv.URL+"/apis", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("empty discovery should encode as [], got %s", body)
	}
}

func TestResolveEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, "")

	tests := []struct {
		domain string
		status int
		want   string
	}{
		{"example.com", http.StatusOK, "/v2/spec?format=openapi"},
		{"down.example.com", http.StatusBadGateway, "RESOLVE_FAILED"},
		{"user@example.com", http.StatusBadRequest, "INVALID_DOMAIN"},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, srv.URL+"/endpoints/"+tt.domain, "")
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (%s)", resp.StatusCode, tt.status, body)
			}
			if !bytes.Contains(body, []byte(tt.want)) {
				t.Errorf("body %s missing %q", body, tt.want)
			}
		})
	}
}

func TestConfigRoutes(t *testing.T) {
	srv, in := newTestServer(t, `{"pets": {"type": "openapi"}}`)

	resp, body := do(t, http.MethodGet, srv.URL+"/config", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte(`"pets"`)) {
		t.Errorf("GET /config = %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, http.MethodGet, srv.URL+"/config/pets", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /config/pets = %d", resp.StatusCode)
	}

	resp, body = do(t, http.MethodGet, srv.URL+"/config/nope", "")
	if resp.StatusCode != http.StatusNotFound || !bytes.Contains(body, []byte("NOT_FOUND")) {
		t.Errorf("GET /config/nope = %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, http.MethodPut, srv.URL+"/config/crm", `{"type": "swagger", "owner": "sales"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT /config/crm = %d %s", resp.StatusCode, body)
	}
	cfg, ok := in.Get("crm")
	if !ok || cfg.Type() != catalog.SpecSwagger || cfg["owner"] != "sales" {
		t.Errorf("stored config = %v", cfg)
	}

	// The write went to disk.
	reloaded := integration.New(in.Path(), integration.WithLogger(log.New(&bytes.Buffer{})))
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	if _, ok := reloaded.Get("crm"); !ok {
		t.Error("PUT should persist the mapping")
	}
}

func TestPutConfigValidation(t *testing.T) {
	srv, in := newTestServer(t, "")

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"type": `},
		{"missing type", `{"owner": "sales"}`},
		{"non-string type", `{"type": 3}`},
		{"null", `null`},
		{"array", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPut, srv.URL+"/config/svc", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (%s)", resp.StatusCode, body)
			}
		})
	}
	if _, ok := in.Get("svc"); ok {
		t.Error("rejected bodies must not be stored")
	}
}

func TestPutConfigInvalidName(t *testing.T) {
	srv, in := newTestServer(t, "")

	for _, name := range []string{"%20%20", "a%09b"} {
		resp, body := do(t, http.MethodPut, srv.URL+"/config/"+name, `{"type": "openapi"}`)
		if resp.StatusCode != http.StatusBadRequest || !bytes.Contains(body, []byte("INVALID_NAME")) {
			t.Errorf("PUT /config/%s = %d %s, want 400 INVALID_NAME", name, resp.StatusCode, body)
		}
	}
	if names := in.Names(); len(names) != 0 {
		t.Errorf("invalid names were stored: %q", names)
	}
}

func TestIntegrate(t *testing.T) {
	srv, _ := newTestServer(t, `{"pets": {"type": "openapi"}}`)

	resp, body := do(t, http.MethodPost, srv.URL+"/integrate", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /integrate = %d %s", resp.StatusCode, body)
	}
	var report pipeline.Report
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatal(err)
	}
	if report.RunID == "" || len(report.Integrated) != 1 || report.Integrated[0] != "pets" {
		t.Errorf("report = %+v", report)
	}

	_, body = do(t, http.MethodPost, srv.URL+"/integrate?dry_run=true", "")
	report = pipeline.Report{}
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatal(err)
	}
	if !report.DryRun || len(report.Planned) != 1 || len(report.Integrated) != 0 {
		t.Errorf("dry run report = %+v", report)
	}
}

func TestMetricsRoute(t *testing.T) {
	srv, _ := newTestServer(t, "")
	if resp, _ := do(t, http.MethodGet, srv.URL+"/metrics", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("/metrics without a handler = %d, want 404", resp.StatusCode)
	}

	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("apiscout_up 1\n"))
	})
	srv, _ = newTestServer(t, "", func(o *Options) { o.Metrics = metrics })
	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	if resp.StatusCode != http.StatusOK || !bytes.Contains(body, []byte("apiscout_up")) {
		t.Errorf("/metrics = %d %s", resp.StatusCode, body)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Options{Discoverer: &fakeDiscoverer{}, Integrator: integration.New(filepath.Join(t.TempDir(), "m.json")), Logger: log.New(&bytes.Buffer{})})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after shutdown", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}

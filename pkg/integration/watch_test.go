package integration

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_mapping.json")
	writeFile(t, path, `{"a": {"type": "openapi"}}`)

	in, _ := newTestIntegrator(t, path)
	in.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- in.Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	writeFile(t, path, `{"a": {"type": "openapi"}, "b": {"type": "swagger"}}`)
	waitFor(t, func() bool {
		_, ok := in.Get("b")
		return ok
	})

	// A broken write keeps the last good mapping.
	writeFile(t, path, `{"broken`)
	time.Sleep(200 * time.Millisecond)
	if _, ok := in.Get("b"); !ok {
		t.Error("broken file should not clear the mapping")
	}

	// Atomic replacement through Set on a second integrator is picked up too.
	other, _ := newTestIntegrator(t, path)
	if err := other.Set("c", Config{"type": "openapi"}); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		_, ok := in.Get("c")
		return ok
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Watch() error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	in, _ := newTestIntegrator(t, filepath.Join(t.TempDir(), "nope", "api_mapping.json"))
	if err := in.Watch(context.Background()); err == nil {
		t.Error("Watch() should fail when the directory does not exist")
	}
}

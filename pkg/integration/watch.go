package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events a single save produces.
const watchDebounce = 50 * time.Millisecond

// Watch reloads the mapping whenever the file is written, created or
// renamed into place, until ctx is done. Reloads behave like LoadConfig: a
// broken file is logged and the previous mapping kept. The parent directory
// is watched rather than the file so atomic replacements are seen.
func (in *Integrator) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	target := filepath.Clean(in.path)
	dir := filepath.Dir(target)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	in.logger.Debug("watching configuration", "path", target)

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			reload = timer.C
		case <-reload:
			reload = nil
			in.logger.Info("configuration changed, reloading", "path", target)
			in.LoadConfig()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("watch error", "path", target, "error", err)
		}
	}
}

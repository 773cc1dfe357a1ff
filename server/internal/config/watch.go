package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDelay is how long the file must stay quiet before it is reloaded.
// Editors typically emit several Write/Create events per save.
const reloadDelay = 100 * time.Millisecond

// Watch monitors path for changes and calls onChange with the newly loaded
// Config once a burst of writes settles. It runs until ctx is cancelled.
//
// If a reload fails (e.g., invalid YAML), the error is logged and the
// previous config remains active. Watch does not call onChange.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return err
	}

	slog.Info("config: watching for changes", "path", path)

	r := &reloader{
		path:     path,
		delay:    reloadDelay,
		onChange: onChange,
		// Re-add the file in case an atomic save replaced the inode.
		rearm: func() { _ = watcher.Add(path) },
	}
	return r.run(ctx, watcher.Events, watcher.Errors)
}

// reloader coalesces file events into debounced reloads.
type reloader struct {
	path     string
	delay    time.Duration
	onChange func(*Config)
	rearm    func()
}

func (r *reloader) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	timer := time.NewTimer(r.delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			// Editors often save via rename, so Create counts as a write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if pending && !timer.Stop() {
				<-timer.C
			}
			timer.Reset(r.delay)
			pending = true

		case <-timer.C:
			pending = false
			r.reload()

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func (r *reloader) reload() {
	cfg, err := Load(r.path)
	if err != nil {
		slog.Error("config: reload failed, keeping previous config",
			"path", r.path, "err", err)
		return
	}

	slog.Info("config: reloaded", "path", r.path,
		"max_iterations", cfg.MDP.Solver.MaxIterations,
		"max_time", cfg.MDP.Solver.MaxTime,
		"log_level", cfg.Log.Level)
	r.onChange(cfg)

	if r.rearm != nil {
		r.rearm()
	}
}

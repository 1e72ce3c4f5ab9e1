package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/volren/engine/core"
)

// Watcher reloads the config file on change and hands the parsed result to a
// callback. Only hot-applicable settings (shading uniforms) are expected to
// take effect mid-session; the callback decides what to apply.
type Watcher struct {
	fsnotify *fsnotify.Watcher
	path     string
	onChange func(*Config)
	done     chan struct{}
}

func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory: editors replace files on save, which drops the
	// watch if it is attached to the file itself
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	w := &Watcher{
		fsnotify: fsWatch,
		path:     path,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	var lastReload time.Time
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// editors fire bursts of events per save
			if time.Since(lastReload) < 100*time.Millisecond {
				continue
			}
			lastReload = time.Now()

			cfg, err := Load(w.path)
			if err != nil {
				core.LogWarn("config reload skipped: %v", err)
				continue
			}
			core.LogInfo("config reloaded from %s", w.path)
			w.onChange(cfg)
		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher: %v", err)
		}
	}
}

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsnotify.Close()
}

package main

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watch watches the directory holding path and calls onChange once at
// start and again on every write or create event for path itself; events
// for other files in the directory are ignored. It returns the first
// watcher error, or nil once the watcher's channels close; compile errors
// are left for onChange to report and do not stop the loop.
func watch(path string, onChange func(string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}

	onChange(path)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				onChange(path)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

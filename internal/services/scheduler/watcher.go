package scheduler

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ternarybob/arbor"
)

// watchDebounce coalesces bursts of filesystem events into one reload.
// Editors typically emit several events per save.
const watchDebounce = 500 * time.Millisecond

// Watcher reloads the scheduler when the timetable file changes on disk,
// so operator edits take effect without a restart. It watches the parent
// directory rather than the file itself because the store replaces the
// file via rename, which would silently drop a file-level watch.
type Watcher struct {
	path    string
	reload  func() error
	logger  arbor.ILogger
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching the timetable file at path. reload is invoked
// after each debounced change.
func NewWatcher(path string, reload func() error, logger arbor.ILogger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create timetable watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch timetable directory: %w", err)
	}

	w := &Watcher{
		path:    path,
		reload:  reload,
		logger:  logger,
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}

	go w.run()
	logger.Info().Str("path", path).Msg("Watching timetable file for changes")
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)

	var timer *time.Timer
	var timerC <-chan time.Time

	base := filepath.Base(w.path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					<-timerC
				}
				timer.Reset(watchDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			w.logger.Info().Str("path", w.path).Msg("Timetable file changed, reloading schedule")
			if err := w.reload(); err != nil {
				w.logger.Error().Err(err).Msg("Failed to reload schedule after file change")
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("Timetable watcher error")
		}
	}
}

package config

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"gopkg.idlgen.dev/generator.go/internal/logger"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// ChangeCallback runs after a debounced change. Its error is logged.
type ChangeCallback func(ctx context.Context) error

// Watcher watches a config file and the IDL trees it points at and runs the
// callback once things settle.
type Watcher struct {
	watcher  *fsnotify.Watcher
	callback ChangeCallback
	debounce time.Duration
	relevant func(name string) bool

	lock    sync.Mutex
	timer   *time.Timer
	started bool
	done    chan struct{}
}

// NewWatcher watches configPath and every directory beneath roots. Only
// events accepted by relevant trigger the callback.
func NewWatcher(configPath string, roots []string, relevant func(string) bool, callback ChangeCallback) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating fsnotify watcher")
	}
	if err := fw.Add(configPath); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "watching %s", configPath)
	}
	for _, root := range roots {
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return fw.Add(p)
			}
			return nil
		})
		if err != nil {
			_ = fw.Close()
			return nil, errors.Wrapf(err, "watching %s", root)
		}
	}
	abs, _ := filepath.Abs(configPath)
	return &Watcher{
		watcher:  fw,
		callback: callback,
		debounce: DefaultDebounce,
		relevant: func(name string) bool {
			if n, _ := filepath.Abs(name); n == abs {
				return true
			}
			return relevant == nil || relevant(name)
		},
		done: make(chan struct{}),
	}, nil
}

// Start runs the event loop until ctx ends or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	w.lock.Lock()
	w.started = true
	w.lock.Unlock()
	go w.loop(ctx)
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			logger.Debugw("watcher event", logger.FieldFile, event.Name, "op", event.Op.String())
			w.schedule(ctx)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("watcher error", logger.FieldError, err)
		}
	}
}

func (w *Watcher) schedule(ctx context.Context) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		// Runs never overlap.
		w.lock.Lock()
		defer w.lock.Unlock()
		if err := w.callback(ctx); err != nil {
			logger.Errorw("regeneration failed", logger.FieldError, err)
		}
	})
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.lock.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	started := w.started
	w.lock.Unlock()
	err := w.watcher.Close()
	if started {
		<-w.done
	}
	return err
}

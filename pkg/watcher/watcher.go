// Package watcher watches the inventory source file and reports changes so
// the visualizer can refresh. It prefers fsnotify and falls back to mtime
// polling on filesystems where inotify is unavailable (network mounts,
// some containers). Change bursts are debounced: dashboards rewrite the
// snapshot in several quick writes and only the last one matters.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/huntmap/pkg/debug"
)

// DefaultPollInterval is the polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// DefaultDebounce is the default change-coalescing window.
const DefaultDebounce = 250 * time.Millisecond

// ErrAlreadyStarted is returned by Start on a running watcher.
var ErrAlreadyStarted = errors.New("watcher already started")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the polling interval for fallback mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher reports changes to a single file via a channel.
type Watcher struct {
	path         string
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool

	changes chan struct{}
	cancel  context.CancelFunc

	mu      sync.Mutex
	started bool
}

// New creates a watcher for the given file.
func New(path string, opts ...Option) *Watcher {
	w := &Watcher{
		path:         path,
		debounce:     DefaultDebounce,
		pollInterval: DefaultPollInterval,
		changes:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Changes returns the channel that receives a signal per coalesced change.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Start begins watching until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return ErrAlreadyStarted
	}
	w.started = true
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	if !w.forcePoll {
		if fw, err := fsnotify.NewWatcher(); err == nil {
			// Watch the directory: editors and exporters replace the file,
			// and a watch on the old inode goes silent after rename.
			if err := fw.Add(filepath.Dir(w.path)); err == nil {
				go w.notifyLoop(ctx, fw)
				return nil
			}
			fw.Close()
		}
		debug.Log("watcher: fsnotify unavailable for %s, polling", w.path)
	}
	go w.pollLoop(ctx)
	return nil
}

// Stop stops the watcher. Safe to call multiple times.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.started = false
}

func (w *Watcher) notifyLoop(ctx context.Context, fw *fsnotify.Watcher) {
	defer fw.Close()
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.signal()
		case _, ok := <-fw.Errors:
			if !ok {
				return
			}
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	last, _ := stamp(w.path)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur, err := stamp(w.path)
			if err != nil {
				continue
			}
			if cur != last {
				last = cur
				w.signal()
			}
		}
	}
}

func (w *Watcher) signal() {
	select {
	case w.changes <- struct{}{}:
	default: // a pending signal already covers this change
	}
}

type fileStamp struct {
	mod  time.Time
	size int64
}

func stamp(path string) (fileStamp, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}, err
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}, nil
}

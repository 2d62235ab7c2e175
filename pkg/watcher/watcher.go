// Package watcher reloads the curriculum file whenever it is edited so the
// board and the served page can re-render. It prefers fsnotify and falls back
// to stat polling on remote filesystems or when PENSUM_FORCE_POLL is set.
package watcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vanderheijden86/pensum/pkg/debug"
	"github.com/vanderheijden86/pensum/pkg/loader"
	"github.com/vanderheijden86/pensum/pkg/model"
)

// ForcePollEnvVar forces polling mode when set to a truthy value.
const ForcePollEnvVar = "PENSUM_FORCE_POLL"

// DefaultPollInterval is the default polling interval for fallback mode.
const DefaultPollInterval = 2 * time.Second

// ErrFileRemoved is handed to the ReloadFunc when the curriculum file goes
// away. A later re-create reloads as usual.
var ErrFileRemoved = errors.New("curriculum file was removed")

// ReloadFunc receives the freshly parsed curriculum, or the error that
// prevented parsing. A failed reload leaves the caller's previous data alone.
type ReloadFunc func(c *model.Curriculum, err error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long edits must settle before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithPollInterval sets the stat interval used in polling mode.
func WithPollInterval(d time.Duration) Option {
	return func(w *Watcher) { w.pollInterval = d }
}

// WithForcePoll forces polling mode even if fsnotify is available.
func WithForcePoll(force bool) Option {
	return func(w *Watcher) { w.forcePoll = force }
}

// Watcher re-parses one curriculum file on change. Saves that leave the
// content untouched, like a bare touch or an editor's double write, do not
// produce a reload.
type Watcher struct {
	path         string
	format       loader.Format
	parse        loader.ParseOptions
	onReload     ReloadFunc
	debounce     time.Duration
	pollInterval time.Duration
	forcePoll    bool

	fsType    FilesystemType
	polling   bool
	debouncer *Debouncer
	pending   chan struct{}

	// Owned by the run loop.
	present   bool
	delivered bool
	digest    [sha256.Size]byte
	lastMtime time.Time
	lastSize  int64
}

// New prepares a watcher for the curriculum at path. Nothing is watched
// until Start.
func New(path string, parse loader.ParseOptions, fn ReloadFunc, opts ...Option) (*Watcher, error) {
	if fn == nil {
		return nil, fmt.Errorf("watch %s: reload callback is required", path)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:         abs,
		format:       loader.FormatFromPath(abs),
		parse:        parse,
		onReload:     fn,
		debounce:     DefaultDebounceDuration,
		pollInterval: DefaultPollInterval,
		pending:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.pollInterval <= 0 {
		w.pollInterval = DefaultPollInterval
	}
	w.debouncer = NewDebouncer(w.debounce)
	return w, nil
}

// Start records the current content as the baseline and watches until ctx
// is done.
func (w *Watcher) Start(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	switch {
	case err == nil:
		w.present = true
		w.delivered = true
		w.digest = sha256.Sum256(data)
		if info, err := os.Stat(w.path); err == nil {
			w.lastMtime, w.lastSize = info.ModTime(), info.Size()
		}
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("watch %s: %w", w.path, err)
	}

	w.fsType = detectFilesystemTypeFunc(w.path)
	w.polling = w.forcePoll || envBool(ForcePollEnvVar) || isRemoteFilesystem(w.fsType)

	var fsw *fsnotify.Watcher
	if !w.polling {
		fsw, err = fsnotify.NewWatcher()
		if err == nil {
			// The directory survives the rename-over-original that atomic
			// saves perform; the file itself does not.
			if err = fsw.Add(filepath.Dir(w.path)); err != nil {
				fsw.Close()
				fsw = nil
			}
		}
		w.polling = fsw == nil
	}
	debug.Log("watching %s (fs=%s, polling=%v)", w.path, w.fsType, w.polling)

	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.debouncer.Cancel()

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
		tick   <-chan time.Time
	)
	if fsw != nil {
		defer fsw.Close()
		events, errs = fsw.Events, fsw.Errors
	} else {
		ticker := time.NewTicker(w.pollInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			switch {
			case ev.Op&fsnotify.Remove != 0:
				w.removed()
			case ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0:
				w.debouncer.Trigger(w.signal)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			debug.Log("watch %s: %v", w.path, err)
		case <-tick:
			w.poll()
		case <-w.pending:
			if ctx.Err() == nil {
				w.reload()
			}
		}
	}
}

// signal runs on the debouncer's timer goroutine and hands the reload to the
// run loop.
func (w *Watcher) signal() {
	select {
	case w.pending <- struct{}{}:
	default:
	}
}

func (w *Watcher) poll() {
	info, err := os.Stat(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.removed()
		} else {
			debug.Log("watch %s: %v", w.path, err)
		}
		return
	}
	if info.ModTime().Equal(w.lastMtime) && info.Size() == w.lastSize {
		return
	}
	w.lastMtime, w.lastSize = info.ModTime(), info.Size()
	w.debouncer.Trigger(w.signal)
}

func (w *Watcher) removed() {
	if !w.present {
		return
	}
	w.present = false
	w.delivered = false
	w.lastMtime, w.lastSize = time.Time{}, 0
	w.debouncer.Cancel()
	debug.Log("watch %s: removed", w.path)
	w.onReload(nil, ErrFileRemoved)
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			w.removed()
			return
		}
		w.delivered = false
		w.onReload(nil, fmt.Errorf("%s: %w", w.path, err))
		return
	}
	w.present = true

	sum := sha256.Sum256(data)
	if w.delivered && sum == w.digest {
		debug.Log("watch %s: content unchanged", w.path)
		return
	}

	c, err := loader.ParseCurriculum(bytes.NewReader(data), w.format, w.parse)
	if err != nil {
		// Force the next save through even if it restores the old bytes.
		w.delivered = false
		w.onReload(nil, fmt.Errorf("%s: %w", w.path, err))
		return
	}
	w.digest, w.delivered = sum, true
	debug.Log("reloaded %s: %d subjects", w.path, len(c.Subjects))
	w.onReload(c, nil)
}

// WatchCurriculum re-parses the curriculum at path every time its content
// changes and hands the result to fn until ctx is done.
func WatchCurriculum(ctx context.Context, path string, parse loader.ParseOptions, fn ReloadFunc, opts ...Option) error {
	w, err := New(path, parse, fn, opts...)
	if err != nil {
		return err
	}
	return w.Start(ctx)
}

func envBool(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

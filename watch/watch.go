// Package watch re-extracts a message file whenever it changes on disk.
//
// A file ending in .json is decoded as a component.Message; any other file is
// treated as the string content of a message (for example a markdown reply
// containing fenced blocks or directives). Bursts of writes are coalesced
// and debounced, and a reload whose content has been replaced by newer
// content before it finished is dropped.
package watch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/internal/logctx"
	"github.com/ggoodman/chatcomponents-go/pipeline"
	"github.com/ggoodman/chatcomponents-go/render"
)

// Update is delivered after each reload.
type Update struct {
	Path    string
	Outcome pipeline.Outcome
	// Err is set when the file could not be read or decoded.
	Err error
}

// Watcher watches a single file.
type Watcher struct {
	path     string
	proc     *pipeline.Processor
	log      *slog.Logger
	debounce time.Duration
	tracker  *render.Tracker

	deliver sync.Mutex
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.log = l
		}
	}
}

// WithDebounce sets how long to wait for writes to settle before reloading.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New returns a Watcher for path that processes each version with proc.
func New(path string, proc *pipeline.Processor, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if proc == nil {
		proc = pipeline.New()
	}
	w := &Watcher{
		path:     abs,
		proc:     proc,
		log:      slog.Default(),
		debounce: 100 * time.Millisecond,
		tracker:  render.NewTracker("reload"),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = logctx.New(w.log)
	return w, nil
}

// Run loads the file once and then on every change, calling fn with each
// fresh Update. fn is never called concurrently. Run returns when ctx is
// done or the underlying watcher fails.
func (w *Watcher) Run(ctx context.Context, fn func(context.Context, Update)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	// Editors often replace files by rename, so watch the directory.
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %q: %w", filepath.Dir(w.path), err)
	}

	changes := &notifier{}
	sub := changes.Subscribe()

	var wg sync.WaitGroup
	defer wg.Wait()
	defer changes.Close()

	wg.Add(1)
	go func() {
		defer wg.Done()
		w.consume(ctx, sub, &wg, fn)
	}()

	changes.Notify()
	w.log.InfoContext(ctx, "watch.start", slog.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Chmod) != 0 {
				changes.Notify()
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.WarnContext(ctx, "watch.fsnotify.error", slog.String("err", err.Error()))
		}
	}
}

func (w *Watcher) consume(ctx context.Context, sub <-chan struct{}, wg *sync.WaitGroup, fn func(context.Context, Update)) {
	for range sub {
		if w.debounce > 0 {
			t := time.NewTimer(w.debounce)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			// Signals that arrived while waiting are covered by this reload.
			select {
			case <-sub:
			default:
			}
		}
		if ctx.Err() != nil {
			return
		}

		data, err := os.ReadFile(w.path)
		if err != nil {
			w.log.WarnContext(ctx, "watch.reload.read_failed", slog.String("err", err.Error()))
			// The next successful read reports even if the bytes are unchanged.
			w.tracker.Forget(w.path)
			w.emit(ctx, fn, Update{Path: w.path, Err: fmt.Errorf("read %q: %w", w.path, err)})
			continue
		}
		content := string(data)
		if prev, ok := w.tracker.Latest(w.path); ok && prev == content {
			continue
		}

		rctx, tk := w.tracker.Begin(ctx, w.path, content)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.reload(ctx, rctx, tk, data, fn)
		}()
	}
}

// reload processes one version of the file under rctx, which is cancelled
// once newer content arrives, and delivers the result under ctx.
func (w *Watcher) reload(ctx, rctx context.Context, tk render.Ticket, data []byte, fn func(context.Context, Update)) {
	source := &logctx.MessageData{Source: w.path}
	ctx = logctx.WithMessageData(ctx, source)
	rctx = logctx.WithMessageData(rctx, source)
	up := Update{Path: w.path}

	msg, err := decodeMessage(w.path, data)
	if err != nil {
		up.Err = err
	} else {
		up.Outcome = w.proc.Process(rctx, msg)
	}

	w.deliver.Lock()
	defer w.deliver.Unlock()
	if !w.tracker.Finish(tk) {
		w.log.DebugContext(ctx, "watch.reload.stale", slog.String("id", tk.ID))
		return
	}
	fn(ctx, up)
	w.log.DebugContext(ctx, "watch.reload.ok",
		slog.String("id", tk.ID),
		slog.String("strategy", string(up.Outcome.Strategy)),
	)
}

func (w *Watcher) emit(ctx context.Context, fn func(context.Context, Update), up Update) {
	w.deliver.Lock()
	defer w.deliver.Unlock()
	fn(ctx, up)
}

func decodeMessage(path string, data []byte) (component.Message, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return component.Message{Content: string(data)}, nil
	}
	var msg component.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return component.Message{}, fmt.Errorf("decode message %q: %w", path, err)
	}
	return msg, nil
}

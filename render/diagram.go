package render

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// DiagramEngine lays out and renders diagram source (for example mermaid)
// into SVG. Render may suspend until the engine resolves or rejects.
type DiagramEngine interface {
	Initialize(ctx context.Context) error
	Render(ctx context.Context, id, source string) (string, error)
}

// DiagramResult is the outcome of one diagram render.
type DiagramResult struct {
	Target string
	ID     string
	Source string
	SVG    string
	Err    error
	// Stale is set when the target's input changed before this render
	// completed; SVG and Err are cleared and the result must be dropped.
	Stale bool
}

// Diagrams drives a DiagramEngine. Initialization happens once, on first
// use, and is retried on the next use if it failed.
type Diagrams struct {
	engine  DiagramEngine
	tracker *Tracker
	log     *slog.Logger

	mu          sync.Mutex
	initialized bool
}

// DiagramOption customizes Diagrams.
type DiagramOption func(*Diagrams)

// WithDiagramLogger overrides the logger.
func WithDiagramLogger(l *slog.Logger) DiagramOption {
	return func(d *Diagrams) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTracker shares a Tracker between Diagrams instances.
func WithTracker(t *Tracker) DiagramOption {
	return func(d *Diagrams) {
		if t != nil {
			d.tracker = t
		}
	}
}

// NewDiagrams wraps engine.
func NewDiagrams(engine DiagramEngine, opts ...DiagramOption) *Diagrams {
	d := &Diagrams{
		engine:  engine,
		tracker: NewTracker("diagram"),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// EnsureInitialized initializes the engine if it has not been initialized
// yet. Concurrent callers block until the single initialization finishes.
func (d *Diagrams) EnsureInitialized(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.initialized {
		return nil
	}
	if err := d.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("initialize diagram engine: %w", err)
	}
	d.initialized = true
	return nil
}

// Render renders source into target under a fresh identifier.
func (d *Diagrams) Render(ctx context.Context, target, source string) DiagramResult {
	ctx, tk := d.tracker.Begin(ctx, target, source)
	res := DiagramResult{Target: target, ID: tk.ID, Source: source}

	if err := d.EnsureInitialized(ctx); err != nil {
		res.Err = err
	} else {
		res.SVG, res.Err = d.engine.Render(ctx, tk.ID, source)
	}

	if !d.tracker.Finish(tk) {
		d.log.DebugContext(ctx, "diagram.render.stale",
			slog.String("target", target),
			slog.String("id", tk.ID),
		)
		return DiagramResult{Target: target, ID: tk.ID, Source: source, Stale: true}
	}
	if res.Err != nil {
		d.log.WarnContext(ctx, "diagram.render.failed",
			slog.String("target", target),
			slog.String("id", tk.ID),
			slog.String("err", res.Err.Error()),
		)
	}
	return res
}

// Forget discards target; in-flight renders for it become stale.
func (d *Diagrams) Forget(target string) {
	d.tracker.Forget(target)
}

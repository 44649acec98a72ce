// Package pipeline runs one message through directive rewriting, component
// extraction and dispatch, recording metrics along the way. The HTTP API,
// the CLI and the file watcher all process messages through a Processor.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/directive"
	"github.com/ggoodman/chatcomponents-go/dispatch"
	"github.com/ggoodman/chatcomponents-go/internal/metrics"
	"github.com/ggoodman/chatcomponents-go/render"
)

// Outcome is the result of processing one message. Descriptor and
// Obligation are nil when the message carries no component, and Obligation
// is nil when the descriptor has nothing to draw.
type Outcome struct {
	Strategy   component.Strategy    `json:"strategy"`
	Descriptor *component.Descriptor `json:"descriptor,omitempty"`
	Obligation *dispatch.Envelope    `json:"obligation,omitempty"`
}

// Processor is safe for concurrent use.
type Processor struct {
	log        *slog.Logger
	extractor  *component.Extractor
	metrics    *metrics.Metrics
	preprocess bool
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// WithExtractor replaces the default extractor.
func WithExtractor(e *component.Extractor) Option {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithMetrics records extraction and dispatch counters on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Processor) { p.metrics = m }
}

// WithPreprocess rewrites :::chart / :::table directives in string content
// before extraction.
func WithPreprocess(on bool) Option {
	return func(p *Processor) { p.preprocess = on }
}

func New(opts ...Option) *Processor {
	p := &Processor{log: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	if p.extractor == nil {
		p.extractor = component.NewExtractor(component.WithLogger(p.log))
	}
	return p
}

// Preprocessing reports whether directives are rewritten by default.
func (p *Processor) Preprocessing() bool { return p.preprocess }

// Metrics returns the counters the processor records on, possibly nil.
func (p *Processor) Metrics() *metrics.Metrics { return p.metrics }

// Process handles msg with the processor's default preprocessing setting.
func (p *Processor) Process(ctx context.Context, msg component.Message) Outcome {
	return p.process(ctx, msg, p.preprocess)
}

// ProcessWith handles msg, rewriting directives first when preprocess is set.
func (p *Processor) ProcessWith(ctx context.Context, msg component.Message, preprocess bool) Outcome {
	return p.process(ctx, msg, preprocess)
}

func (p *Processor) process(ctx context.Context, msg component.Message, preprocess bool) Outcome {
	if preprocess {
		msg = directive.RewriteMessage(msg)
	}

	res := p.extractor.Explain(msg)
	p.metrics.Extraction(string(res.Strategy))
	out := Outcome{Strategy: res.Strategy}
	if !res.Found {
		p.log.DebugContext(ctx, "pipeline.extract.none")
		return out
	}
	d := res.Descriptor
	out.Descriptor = &d

	env, ok := p.Resolve(ctx, d)
	if ok {
		out.Obligation = &env
	}
	p.log.DebugContext(ctx, "pipeline.extract.ok",
		slog.String("strategy", string(res.Strategy)),
		slog.String("type", string(d.Type)),
		slog.Bool("drawable", ok),
	)
	return out
}

// Resolve dispatches d and records the obligation kind.
func (p *Processor) Resolve(ctx context.Context, d component.Descriptor) (dispatch.Envelope, bool) {
	ob, ok := dispatch.Resolve(d)
	if !ok {
		return dispatch.Envelope{}, false
	}
	p.metrics.Obligation(string(ob.Kind()))
	if issues := ob.Issues(); len(issues) > 0 {
		p.log.WarnContext(ctx, "pipeline.resolve.problems",
			slog.String("kind", string(ob.Kind())),
			slog.Any("problems", issues),
		)
	}
	return dispatch.Wrap(ob), true
}

// Draw renders out's obligation with r. Outcomes without an obligation draw
// nothing. A failure is shown inline by r, logged and counted, and returned.
func (p *Processor) Draw(ctx context.Context, r render.Renderer, out Outcome) *render.Failure {
	if out.Obligation == nil {
		return nil
	}
	f := render.Render(ctx, r, out.Obligation.Obligation)
	if f != nil {
		p.metrics.RenderFailure(f.Kind)
		p.log.WarnContext(ctx, "pipeline.draw.failed",
			slog.String("kind", f.Kind),
			slog.String("err", f.Err.Error()),
		)
	}
	return f
}

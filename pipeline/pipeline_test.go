package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/dispatch"
	"github.com/ggoodman/chatcomponents-go/internal/logtest"
	"github.com/ggoodman/chatcomponents-go/internal/metrics"
	"github.com/ggoodman/chatcomponents-go/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProcess(t *testing.T) {
	log, _ := logtest.New(t)
	m := metrics.New(prometheus.NewRegistry())
	p := New(WithLogger(log), WithMetrics(m))

	tests := []struct {
		name     string
		msg      component.Message
		strategy component.Strategy
		kind     dispatch.Kind
	}{
		{
			name:     "nested",
			msg:      component.Message{AdditionalKwargs: map[string]any{"component": map[string]any{"type": "file", "data": map[string]any{"name": "a.csv"}}}},
			strategy: component.StrategyNested,
			kind:     dispatch.KindFile,
		},
		{
			name:     "tool call",
			msg:      component.Message{ToolCalls: []component.ToolCall{{Name: "render_chart", Args: map[string]any{"series": []any{}}, ID: "c1"}}},
			strategy: component.StrategyToolCall,
			kind:     dispatch.KindChart,
		},
		{
			name:     "custom",
			msg:      component.Message{AdditionalKwargs: map[string]any{"type": "custom", "data": 1.0}},
			strategy: component.StrategyFlat,
			kind:     dispatch.KindUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := p.Process(t.Context(), tt.msg)
			if out.Strategy != tt.strategy || out.Descriptor == nil || out.Obligation == nil {
				t.Fatalf("unexpected outcome %+v", out)
			}
			if out.Obligation.Kind != tt.kind {
				t.Fatalf("want kind %s, got %s", tt.kind, out.Obligation.Kind)
			}
		})
	}

	if got := testutil.ToFloat64(m.Obligations.WithLabelValues("chart")); got != 1 {
		t.Fatalf("chart obligations = %v", got)
	}
}

func TestProcess_NoComponent(t *testing.T) {
	p := New()
	out := p.Process(t.Context(), component.Message{Content: "hello"})
	if out.Strategy != component.StrategyNone || out.Descriptor != nil || out.Obligation != nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestProcess_EmptyImagesHaveNoObligation(t *testing.T) {
	p := New()
	out := p.Process(t.Context(), component.Message{AdditionalKwargs: map[string]any{"type": "image", "data": map[string]any{"images": []any{}}}})
	if out.Descriptor == nil || out.Obligation != nil {
		t.Fatalf("unexpected outcome %+v", out)
	}
}

func TestProcess_Preprocess(t *testing.T) {
	msg := component.Message{Content: `see :::chart{{"series":[{"data":[1,2]}]}}::: above`}

	if out := New().Process(t.Context(), msg); out.Descriptor != nil {
		t.Fatalf("directive should be ignored without preprocessing, got %+v", out)
	}
	out := New(WithPreprocess(true)).Process(t.Context(), msg)
	if out.Strategy != component.StrategyFence || out.Obligation.Kind != dispatch.KindChart {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out := New().ProcessWith(t.Context(), msg, true); out.Strategy != component.StrategyFence {
		t.Fatalf("per-call preprocessing not applied: %+v", out)
	}
}

func TestResolve_LogsProblems(t *testing.T) {
	log, bridge := logtest.New(t)
	p := New(WithLogger(log))
	env, ok := p.Resolve(t.Context(), component.Descriptor{Type: component.TypeTable, Data: map[string]any{}})
	if !ok || env.Kind != dispatch.KindTable {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if !bridge.Logged("pipeline.resolve.problems") {
		t.Fatalf("expected problems log, got %v", bridge.Messages())
	}
}

type failingRenderer struct {
	render.Renderer
	failures int
}

func (r *failingRenderer) RenderTable(context.Context, *dispatch.Table) error {
	return errors.New("no table support")
}

func (r *failingRenderer) RenderFailure(context.Context, *render.Failure) error {
	r.failures++
	return nil
}

func TestDraw(t *testing.T) {
	log, bridge := logtest.New(t)
	m := metrics.New(prometheus.NewRegistry())
	p := New(WithLogger(log), WithMetrics(m))

	r := &failingRenderer{}
	if f := p.Draw(t.Context(), r, Outcome{Strategy: component.StrategyNone}); f != nil {
		t.Fatalf("nothing to draw, got %v", f)
	}

	out := p.Process(t.Context(), component.Message{AdditionalKwargs: map[string]any{"type": "table", "data": map[string]any{"headers": []any{"a"}, "rows": []any{}}}})
	f := p.Draw(t.Context(), r, out)
	if f == nil || f.Kind != "table" || r.failures != 1 {
		t.Fatalf("expected inline table failure, got %v (shown %d)", f, r.failures)
	}
	if got := testutil.ToFloat64(m.RenderFailures.WithLabelValues("table")); got != 1 {
		t.Fatalf("render failures = %v", got)
	}
	if !bridge.Logged("pipeline.draw.failed") {
		t.Fatalf("expected failure log, got %v", bridge.Messages())
	}
}

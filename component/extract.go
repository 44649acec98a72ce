package component

import (
	"log/slog"
	"slices"
)

// Strategy names the rule that produced a descriptor.
type Strategy string

const (
	StrategyNone     Strategy = "none"
	StrategyNested   Strategy = "nested"
	StrategyFlat     Strategy = "flat"
	StrategyToolCall Strategy = "tool_call"
	StrategyFence    Strategy = "fence"
)

// Defaults for the recognized message shapes.
const (
	DefaultComponentKey = "component"
)

// DefaultChartTools are the tool names whose arguments are chart options.
var DefaultChartTools = []string{"render_chart", "create_visualization"}

// Result is the outcome of Explain.
type Result struct {
	Descriptor Descriptor
	Strategy   Strategy
	Found      bool
}

// Extractor applies the extraction strategies in precedence order. The zero
// value is not usable; construct one with NewExtractor.
type Extractor struct {
	log          *slog.Logger
	componentKey string
	chartTools   []string
}

// Option customizes an Extractor.
type Option func(*Extractor)

// WithLogger overrides the logger used for fence parse diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.log = l
		}
	}
}

// WithComponentKey overrides the metadata key holding a nested descriptor.
func WithComponentKey(key string) Option {
	return func(e *Extractor) {
		if key != "" {
			e.componentKey = key
		}
	}
}

// WithChartTools overrides the recognized chart tool names.
func WithChartTools(names ...string) Option {
	return func(e *Extractor) {
		if len(names) > 0 {
			e.chartTools = slices.Clone(names)
		}
	}
}

// NewExtractor builds an Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		log:          slog.Default(),
		componentKey: DefaultComponentKey,
		chartTools:   DefaultChartTools,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = NewExtractor()

// Extract runs the default extractor against msg.
func Extract(msg Message) (Descriptor, bool) {
	return defaultExtractor.Extract(msg)
}

// Extract returns the descriptor for msg, if any.
func (e *Extractor) Extract(msg Message) (Descriptor, bool) {
	r := e.Explain(msg)
	return r.Descriptor, r.Found
}

// Explain is Extract plus the name of the winning strategy.
func (e *Extractor) Explain(msg Message) Result {
	steps := []struct {
		name Strategy
		fn   func(Message) (Descriptor, bool)
	}{
		{StrategyNested, e.fromNested},
		{StrategyFlat, e.fromFlat},
		{StrategyToolCall, e.fromToolCalls},
		{StrategyFence, e.fromFences},
	}
	for _, s := range steps {
		if d, ok := s.fn(msg); ok {
			return Result{Descriptor: d, Strategy: s.name, Found: true}
		}
	}
	return Result{Strategy: StrategyNone}
}

func (e *Extractor) fromNested(msg Message) (Descriptor, bool) {
	v, ok := msg.AdditionalKwargs[e.componentKey]
	if !ok {
		return Descriptor{}, false
	}
	return asDescriptor(v)
}

func (e *Extractor) fromFlat(msg Message) (Descriptor, bool) {
	kw := msg.AdditionalKwargs
	typ, _ := kw["type"].(string)
	data := kw["data"]
	if typ == "" || data == nil {
		return Descriptor{}, false
	}
	return Descriptor{Type: Type(typ), Data: data}, true
}

func (e *Extractor) fromToolCalls(msg Message) (Descriptor, bool) {
	i := slices.IndexFunc(msg.ToolCalls, func(tc ToolCall) bool {
		return slices.Contains(e.chartTools, tc.Name)
	})
	if i < 0 {
		return Descriptor{}, false
	}
	tc := msg.ToolCalls[i]
	if tc.Args == nil {
		return Descriptor{}, false
	}
	return Descriptor{
		Type:     TypeChart,
		Data:     tc.Args,
		Metadata: map[string]any{MetaToolCallID: tc.ID},
	}, true
}

func (e *Extractor) fromFences(msg Message) (Descriptor, bool) {
	text, ok := msg.Text()
	if !ok {
		return Descriptor{}, false
	}
	for _, tag := range []string{FenceChart, FenceTable} {
		body, ok := FindFence(text, tag)
		if !ok {
			continue
		}
		d, err := FromFence(tag, body)
		if err != nil {
			e.log.Warn("extract.fence.parse_failed",
				slog.String("tag", tag),
				slog.String("err", err.Error()),
			)
			continue
		}
		return d, true
	}
	return Descriptor{}, false
}

package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/dispatch"
	"github.com/ggoodman/chatcomponents-go/internal/logctx"
)

// CodeRenderer draws an ordinary code block (syntax highlighting, copy
// affordances and so on).
type CodeRenderer interface {
	RenderCode(ctx context.Context, lang, code string) error
}

// SVGRenderer places rendered diagram markup into a target region.
type SVGRenderer interface {
	RenderSVG(ctx context.Context, target, svg string) error
}

// Sentinel errors reported for invalid component code blocks.
var (
	ErrInvalidChart = errors.New("invalid chart config")
	ErrInvalidTable = errors.New("invalid table data")
)

// CodeBlocks is the code-block handler of a document renderer. Diagrams and
// SVG are optional; without them mermaid blocks render as plain code. When
// Code is nil, Components is used for plain code if it is a CodeRenderer;
// otherwise plain code blocks are left to the caller.
type CodeBlocks struct {
	Components Renderer
	Code       CodeRenderer
	Diagrams   *Diagrams
	SVG        SVGRenderer
}

// Handle renders one fenced code block with language tag lang. target names
// the visual region the block occupies.
func (c *CodeBlocks) Handle(ctx context.Context, target, lang, code string) *Failure {
	ctx = logctx.WithRenderData(ctx, &logctx.RenderData{Target: target, Kind: lang})
	switch lang {
	case "mermaid":
		if c.Diagrams != nil && c.SVG != nil {
			return c.diagram(ctx, target, code)
		}
	case component.FenceChart, component.FenceTable:
		return c.component(ctx, lang, code)
	}
	cr := c.Code
	if cr == nil {
		cr, _ = c.Components.(CodeRenderer)
	}
	if cr == nil {
		return nil
	}
	if err := cr.RenderCode(ctx, lang, code); err != nil {
		return c.fail(ctx, &Failure{Kind: "code", Err: err, Source: code})
	}
	return nil
}

func (c *CodeBlocks) diagram(ctx context.Context, target, code string) *Failure {
	res := c.Diagrams.Render(ctx, target, code)
	switch {
	case res.Stale:
		return nil
	case res.Err != nil:
		return c.fail(ctx, &Failure{Kind: "diagram", Err: res.Err, Source: code})
	}
	if err := c.SVG.RenderSVG(ctx, target, res.SVG); err != nil {
		return c.fail(ctx, &Failure{Kind: "diagram", Err: err, Source: code})
	}
	return nil
}

func (c *CodeBlocks) component(ctx context.Context, lang, code string) *Failure {
	invalid := ErrInvalidChart
	if lang == component.FenceTable {
		invalid = ErrInvalidTable
	}
	d, err := component.FromFence(lang, code)
	if err != nil {
		return c.fail(ctx, &Failure{Kind: lang, Err: fmt.Errorf("%w: %v", invalid, err), Source: code})
	}
	ob, ok := dispatch.Resolve(d)
	if !ok {
		return nil
	}
	if tb, isTable := ob.(*dispatch.Table); isTable && (tb.Headers == nil || tb.Rows == nil) {
		return c.fail(ctx, &Failure{Kind: lang, Err: invalid, Source: code})
	}
	return Render(ctx, c.Components, ob)
}

func (c *CodeBlocks) fail(ctx context.Context, f *Failure) *Failure {
	_ = c.Components.RenderFailure(ctx, f)
	return f
}

package render

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/ggoodman/chatcomponents-go/dispatch"
)

// Renderer draws resolved obligations.
type Renderer interface {
	RenderChart(ctx context.Context, ob *dispatch.Chart) error
	RenderTable(ctx context.Context, ob *dispatch.Table) error
	RenderImages(ctx context.Context, ob *dispatch.Images) error
	RenderFile(ctx context.Context, ob *dispatch.File) error
	RenderUnknown(ctx context.Context, ob *dispatch.Unknown) error
	// RenderFailure shows a failure inline, at the site of the region that
	// failed, with the raw error text and the source it was drawing.
	RenderFailure(ctx context.Context, f *Failure) error
}

// Failure is a renderer-level error scoped to a single region.
type Failure struct {
	Kind   string
	Err    error
	Source string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("render %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Render draws ob with r. A renderer error is converted to a *Failure, shown
// through r.RenderFailure, and returned; it is never propagated as an error.
func Render(ctx context.Context, r Renderer, ob dispatch.Obligation) *Failure {
	var err error
	switch ob := ob.(type) {
	case *dispatch.Chart:
		err = r.RenderChart(ctx, ob)
	case *dispatch.Table:
		err = r.RenderTable(ctx, ob)
	case *dispatch.Images:
		err = r.RenderImages(ctx, ob)
	case *dispatch.File:
		err = r.RenderFile(ctx, ob)
	case *dispatch.Unknown:
		err = r.RenderUnknown(ctx, ob)
	default:
		err = fmt.Errorf("unsupported obligation %T", ob)
	}
	if err == nil {
		return nil
	}
	f := &Failure{Kind: kindOf(ob), Err: err, Source: sourceOf(ob)}
	_ = r.RenderFailure(ctx, f)
	return f
}

// Descriptor resolves d and draws the result. A descriptor that resolves to
// nothing (an empty image set) draws nothing.
func Descriptor(ctx context.Context, r Renderer, d component.Descriptor) *Failure {
	ob, ok := dispatch.Resolve(d)
	if !ok {
		return nil
	}
	return Render(ctx, r, ob)
}

func kindOf(ob dispatch.Obligation) string {
	if ob == nil {
		return "nil"
	}
	return string(ob.Kind())
}

func sourceOf(ob dispatch.Obligation) string {
	b, err := json.MarshalIndent(ob, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", ob)
	}
	return string(b)
}

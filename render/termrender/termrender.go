// Package termrender draws component obligations as plain terminal text.
// Tables go through tablewriter; notices and failures are colored with
// fatih/color, which honors NO_COLOR and non-terminal writers.
package termrender

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/ggoodman/chatcomponents-go/dispatch"
	"github.com/ggoodman/chatcomponents-go/render"
	"github.com/olekukonko/tablewriter"
)

var (
	heading = color.New(color.FgHiBlue, color.Bold)
	muted   = color.New(color.FgHiBlack)
	warn    = color.New(color.FgHiYellow, color.Bold)
	danger  = color.New(color.FgHiRed, color.Bold)
)

// Renderer writes obligations to an io.Writer. It also handles plain code
// blocks, so it can serve every role of render.CodeBlocks.
type Renderer struct {
	w io.Writer
}

var (
	_ render.Renderer     = (*Renderer)(nil)
	_ render.CodeRenderer = (*Renderer)(nil)
	_ render.SVGRenderer  = (*Renderer)(nil)
)

// New returns a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) RenderChart(_ context.Context, ob *dispatch.Chart) error {
	title := "Chart"
	if ob.ToolCallID != "" {
		title += " (" + ob.ToolCallID + ")"
	}
	heading.Fprintln(r.w, title)
	b, err := json.MarshalIndent(ob.Option, "", "  ")
	if err != nil {
		return fmt.Errorf("encode chart option: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(b))
	return err
}

func (r *Renderer) RenderTable(_ context.Context, ob *dispatch.Table) error {
	table := tablewriter.NewWriter(r.w)
	if len(ob.Headers) > 0 {
		if err := table.Append(ob.Headers); err != nil {
			return fmt.Errorf("table header: %w", err)
		}
	}
	for i, row := range ob.Rows {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cell(v)
		}
		if err := table.Append(cells); err != nil {
			return fmt.Errorf("table row %d: %w", i, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	return nil
}

func (r *Renderer) RenderImages(_ context.Context, ob *dispatch.Images) error {
	switch ob.Layout {
	case dispatch.LayoutGrid:
		heading.Fprintf(r.w, "Images (grid, %d columns)\n", render.GridColumns(len(ob.Images)))
	case dispatch.LayoutCarousel:
		heading.Fprintf(r.w, "Images (carousel, %d)\n", len(ob.Images))
	default:
		heading.Fprintln(r.w, "Image")
	}
	for i, img := range ob.Images {
		line := fmt.Sprintf("  [%s] %s", render.ImageAlt(i, img), img.URL)
		if ob.Layout == dispatch.LayoutSingle && img.Caption != "" {
			line += " - " + img.Caption
		}
		if _, err := fmt.Fprintln(r.w, line); err != nil {
			return err
		}
	}
	if ob.Caption != "" {
		muted.Fprintln(r.w, "  "+ob.Caption)
	}
	return nil
}

func (r *Renderer) RenderFile(_ context.Context, ob *dispatch.File) error {
	name := ob.Name
	if name == "" {
		name = "(unnamed file)"
	}
	line := name
	if ob.Size > 0 {
		line += " (" + render.FormatFileSize(ob.Size) + ")"
	}
	heading.Fprintln(r.w, line)
	if ob.URL != "" {
		muted.Fprintln(r.w, "  "+ob.URL)
	}
	return nil
}

func (r *Renderer) RenderUnknown(_ context.Context, ob *dispatch.Unknown) error {
	warn.Fprintf(r.w, "Unknown component type: %s\n", ob.Descriptor.Type)
	b, err := json.MarshalIndent(ob.Descriptor.Data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode component data: %w", err)
	}
	_, err = fmt.Fprintln(r.w, string(b))
	return err
}

func (r *Renderer) RenderFailure(_ context.Context, f *render.Failure) error {
	danger.Fprintf(r.w, "%s render error: %v\n", f.Kind, f.Err)
	if f.Source == "" {
		return nil
	}
	_, err := fmt.Fprintln(r.w, indent(f.Source))
	return err
}

func (r *Renderer) RenderCode(_ context.Context, lang, code string) error {
	if lang != "" {
		muted.Fprintln(r.w, lang)
	}
	_, err := fmt.Fprintln(r.w, indent(code))
	return err
}

func (r *Renderer) RenderSVG(_ context.Context, target, svg string) error {
	muted.Fprintf(r.w, "diagram %s: %d bytes of svg\n", target, len(svg))
	return nil
}

func cell(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64, bool, int, int64:
		return fmt.Sprint(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

func indent(s string) string {
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}

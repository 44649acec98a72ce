package dispatch

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/ggoodman/chatcomponents-go/component"
)

func TestResolve_Chart(t *testing.T) {
	t.Run("option key", func(t *testing.T) {
		opt := map[string]any{"series": []any{}}
		ob, ok := Resolve(component.Descriptor{
			Type:     component.TypeChart,
			Data:     map[string]any{"option": opt},
			Metadata: map[string]any{component.MetaToolCallID: "abc"},
		})
		if !ok {
			t.Fatal("expected obligation")
		}
		c, isChart := ob.(*Chart)
		if !isChart {
			t.Fatalf("expected *Chart, got %T", ob)
		}
		if !reflect.DeepEqual(c.Option, opt) {
			t.Fatalf("unexpected option %#v", c.Option)
		}
		if c.ToolCallID != "abc" {
			t.Fatalf("expected tool call id, got %q", c.ToolCallID)
		}
		if len(c.Issues()) != 0 {
			t.Fatalf("unexpected problems %v", c.Issues())
		}
	})

	t.Run("bare option", func(t *testing.T) {
		data := map[string]any{"xAxis": map[string]any{"type": "category"}}
		ob, _ := Resolve(component.Descriptor{Type: component.TypeChart, Data: data})
		if c := ob.(*Chart); !reflect.DeepEqual(c.Option, data) {
			t.Fatalf("expected whole data as option, got %#v", c.Option)
		}
	})
}

func TestResolve_Table(t *testing.T) {
	ob, ok := Resolve(component.Descriptor{Type: component.TypeTable, Data: map[string]any{
		"headers": []any{"name", float64(2024)},
		"rows":    []any{[]any{"a", float64(1)}, []any{"b", float64(2)}},
	}})
	if !ok {
		t.Fatal("expected obligation")
	}
	tb := ob.(*Table)
	if want := []string{"name", "2024"}; !reflect.DeepEqual(tb.Headers, want) {
		t.Fatalf("headers: want %v, got %v", want, tb.Headers)
	}
	if len(tb.Rows) != 2 || tb.Rows[1][0] != "b" {
		t.Fatalf("unexpected rows %#v", tb.Rows)
	}
	if len(tb.Issues()) != 0 {
		t.Fatalf("unexpected problems %v", tb.Issues())
	}
}

func TestResolve_TableMissingFields(t *testing.T) {
	ob, ok := Resolve(component.Descriptor{Type: component.TypeTable, Data: map[string]any{
		"rows": []any{[]any{"x"}},
	}})
	if !ok {
		t.Fatal("shape mismatch must still produce an obligation")
	}
	tb := ob.(*Table)
	if tb.Headers != nil {
		t.Fatalf("expected no headers, got %v", tb.Headers)
	}
	if len(tb.Rows) != 1 {
		t.Fatalf("rows should survive, got %v", tb.Rows)
	}
	if !hasProblem(tb, "missing headers") {
		t.Fatalf("expected missing headers problem, got %v", tb.Issues())
	}

	ob, _ = Resolve(component.Descriptor{Type: component.TypeTable, Data: "nope"})
	if !hasProblem(ob, "not an object") {
		t.Fatalf("expected shape problem, got %v", ob.Issues())
	}
}

func TestResolve_Images(t *testing.T) {
	tests := []struct {
		name       string
		data       any
		wantOK     bool
		wantLayout Layout
		wantCount  int
		wantIssue  string
	}{
		{
			name:       "single url without images array",
			data:       map[string]any{"url": "u", "alt": "a", "caption": "c"},
			wantOK:     true,
			wantLayout: LayoutSingle,
			wantCount:  1,
		},
		{
			name:       "array of one overrides carousel",
			data:       map[string]any{"images": []any{map[string]any{"url": "u"}}, "layout": "carousel"},
			wantOK:     true,
			wantLayout: LayoutSingle,
			wantCount:  1,
		},
		{
			name: "grid by default",
			data: map[string]any{"images": []any{
				map[string]any{"url": "a"}, map[string]any{"url": "b"},
			}},
			wantOK:     true,
			wantLayout: LayoutGrid,
			wantCount:  2,
		},
		{
			name: "carousel on request",
			data: map[string]any{"layout": "carousel", "images": []any{
				map[string]any{"url": "a"}, map[string]any{"url": "b"}, map[string]any{"url": "c"},
			}},
			wantOK:     true,
			wantLayout: LayoutCarousel,
			wantCount:  3,
		},
		{
			name: "unknown layout falls back to grid",
			data: map[string]any{"layout": "mosaic", "images": []any{
				map[string]any{"url": "a"}, "b",
			}},
			wantOK:     true,
			wantLayout: LayoutGrid,
			wantCount:  2,
			wantIssue:  "unknown layout",
		},
		{
			name:       "entry without url is reported",
			data:       map[string]any{"images": []any{map[string]any{"alt": "x"}, map[string]any{"url": "y"}}},
			wantOK:     true,
			wantLayout: LayoutGrid,
			wantCount:  2,
			wantIssue:  "missing url",
		},
		{
			name: "no images",
			data: map[string]any{"caption": "empty"},
		},
		{
			name: "empty array",
			data: map[string]any{"images": []any{}, "url": "ignored"},
		},
		{
			name: "not an object",
			data: []any{"u"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ob, ok := Resolve(component.Descriptor{Type: component.TypeImage, Data: tt.data})
			if ok != tt.wantOK {
				t.Fatalf("ok: want %v, got %v", tt.wantOK, ok)
			}
			if !ok {
				if ob != nil {
					t.Fatalf("expected nil obligation, got %#v", ob)
				}
				return
			}
			im := ob.(*Images)
			if im.Layout != tt.wantLayout {
				t.Errorf("layout: want %s, got %s", tt.wantLayout, im.Layout)
			}
			if len(im.Images) != tt.wantCount {
				t.Errorf("count: want %d, got %d", tt.wantCount, len(im.Images))
			}
			if tt.wantIssue != "" && !hasProblem(im, tt.wantIssue) {
				t.Errorf("expected problem containing %q, got %v", tt.wantIssue, im.Issues())
			}
		})
	}
}

func TestResolve_SingleImageKeepsItsCaption(t *testing.T) {
	ob, _ := Resolve(component.Descriptor{Type: component.TypeImage, Data: map[string]any{
		"url": "u", "alt": "a", "caption": "c",
	}})
	im := ob.(*Images)
	if want := (Image{URL: "u", Alt: "a", Caption: "c"}); im.Images[0] != want {
		t.Fatalf("want %+v, got %+v", want, im.Images[0])
	}
	if im.Caption != "" {
		t.Fatalf("set caption should be empty for a single record, got %q", im.Caption)
	}
}

func TestResolve_File(t *testing.T) {
	ob, _ := Resolve(component.Descriptor{Type: component.TypeFile, Data: map[string]any{
		"name": "report.pdf", "size": float64(2048), "url": "https://example.com/r.pdf",
	}})
	f := ob.(*File)
	if f.Name != "report.pdf" || f.Size != 2048 || f.URL != "https://example.com/r.pdf" {
		t.Fatalf("unexpected file %+v", f)
	}

	ob, _ = Resolve(component.Descriptor{Type: component.TypeFile, Data: map[string]any{"size": "10"}})
	f = ob.(*File)
	if f.Size != 10 {
		t.Fatalf("expected weakly typed size, got %d", f.Size)
	}
	if !hasProblem(f, "missing name") {
		t.Fatalf("expected missing name problem, got %v", f.Issues())
	}
}

func TestResolve_Unknown(t *testing.T) {
	for _, typ := range []component.Type{"bogus", component.TypeCustom, ""} {
		d := component.Descriptor{Type: typ, Data: map[string]any{}}
		ob, ok := Resolve(d)
		if !ok {
			t.Fatalf("%q: expected obligation", typ)
		}
		u, isUnknown := ob.(*Unknown)
		if !isUnknown {
			t.Fatalf("%q: expected *Unknown, got %T", typ, ob)
		}
		if !reflect.DeepEqual(u.Descriptor, d) {
			t.Fatalf("%q: descriptor not preserved: %#v", typ, u.Descriptor)
		}
		if u.Kind() != KindUnknown {
			t.Fatalf("%q: unexpected kind %s", typ, u.Kind())
		}
	}
}

func TestWrap_JSON(t *testing.T) {
	ob, _ := Resolve(component.Descriptor{Type: component.TypeFile, Data: map[string]any{"name": "a"}})
	b, err := json.Marshal(Wrap(ob))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["kind"] != "file" {
		t.Fatalf("unexpected kind in %s", b)
	}
	inner, _ := got["obligation"].(map[string]any)
	if inner["name"] != "a" {
		t.Fatalf("unexpected obligation in %s", b)
	}
	if _, ok := inner["problems"]; ok {
		t.Fatalf("problems should be omitted when empty: %s", b)
	}
}

func hasProblem(ob Obligation, substr string) bool {
	for _, p := range ob.Issues() {
		if strings.Contains(p, substr) {
			return true
		}
	}
	return false
}

package dispatch

import (
	"fmt"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/mitchellh/mapstructure"
)

// Resolve selects the obligation for d. It returns ok == false only when
// there is nothing to draw: an image descriptor without any image.
func Resolve(d component.Descriptor) (Obligation, bool) {
	switch d.Type {
	case component.TypeChart:
		return resolveChart(d), true
	case component.TypeTable:
		return resolveTable(d), true
	case component.TypeImage:
		ob := resolveImages(d)
		if len(ob.Images) == 0 {
			return nil, false
		}
		return ob, true
	case component.TypeFile:
		return resolveFile(d), true
	default:
		return &Unknown{Descriptor: d}, true
	}
}

func resolveChart(d component.Descriptor) *Chart {
	ob := &Chart{Option: d.Data}
	if m, ok := d.Data.(map[string]any); ok {
		if opt, ok := m["option"]; ok {
			ob.Option = opt
		}
	}
	if ob.Option == nil {
		ob.problem("chart: missing option")
	}
	if id, ok := d.Metadata[component.MetaToolCallID].(string); ok {
		ob.ToolCallID = id
	}
	return ob
}

type tablePayload struct {
	Headers []string `mapstructure:"headers"`
	Rows    [][]any  `mapstructure:"rows"`
}

func resolveTable(d component.Descriptor) *Table {
	ob := &Table{}
	m, ok := d.Data.(map[string]any)
	if !ok {
		ob.problem(fmt.Sprintf("table: data is %T, not an object", d.Data))
		return ob
	}
	if _, ok := m["headers"]; !ok {
		ob.problem("table: missing headers")
	}
	if _, ok := m["rows"]; !ok {
		ob.problem("table: missing rows")
	}
	var p tablePayload
	if err := decode(m, &p); err != nil {
		ob.problem("table: " + err.Error())
	}
	ob.Headers = p.Headers
	ob.Rows = p.Rows
	return ob
}

type imagePayload struct {
	URL     string `mapstructure:"url"`
	Alt     string `mapstructure:"alt"`
	Caption string `mapstructure:"caption"`
	Layout  string `mapstructure:"layout"`
}

func resolveImages(d component.Descriptor) *Images {
	ob := &Images{}
	m, ok := d.Data.(map[string]any)
	if !ok {
		ob.problem(fmt.Sprintf("image: data is %T, not an object", d.Data))
		return ob
	}
	var p imagePayload
	if err := decode(m, &p); err != nil {
		ob.problem("image: " + err.Error())
	}

	if list, ok := m["images"].([]any); ok {
		for i, raw := range list {
			img, err := decodeImage(raw)
			if err != nil {
				ob.problem(fmt.Sprintf("image[%d]: %v", i, err))
			}
			if img.URL == "" {
				ob.problem(fmt.Sprintf("image[%d]: missing url", i))
			}
			ob.Images = append(ob.Images, img)
		}
		ob.Caption = p.Caption
	} else if p.URL != "" {
		ob.Images = []Image{{URL: p.URL, Alt: p.Alt, Caption: p.Caption}}
	}

	switch {
	case len(ob.Images) == 1:
		ob.Layout = LayoutSingle
	case p.Layout == "" || p.Layout == string(LayoutGrid):
		ob.Layout = LayoutGrid
	case p.Layout == string(LayoutCarousel):
		ob.Layout = LayoutCarousel
	default:
		ob.problem(fmt.Sprintf("image: unknown layout %q, using grid", p.Layout))
		ob.Layout = LayoutGrid
	}
	return ob
}

func decodeImage(raw any) (Image, error) {
	if s, ok := raw.(string); ok {
		return Image{URL: s}, nil
	}
	var img Image
	if _, ok := raw.(map[string]any); !ok {
		return img, fmt.Errorf("record is %T, not an object", raw)
	}
	err := decode(raw, &img)
	return img, err
}

type filePayload struct {
	Name string `mapstructure:"name"`
	Size int64  `mapstructure:"size"`
	URL  string `mapstructure:"url"`
}

func resolveFile(d component.Descriptor) *File {
	ob := &File{}
	m, ok := d.Data.(map[string]any)
	if !ok {
		ob.problem(fmt.Sprintf("file: data is %T, not an object", d.Data))
		return ob
	}
	var p filePayload
	if err := decode(m, &p); err != nil {
		ob.problem("file: " + err.Error())
	}
	if p.Name == "" {
		ob.problem("file: missing name")
	}
	ob.Name, ob.Size, ob.URL = p.Name, p.Size, p.URL
	return ob
}

// decode copies a loosely typed JSON value into out. Numbers are accepted
// where strings are expected and vice versa.
func decode(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// Package toolcall describes the chart tools an agent may call and converts
// tool invocations received over MCP into extractor tool calls.
package toolcall

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ggoodman/chatcomponents-go/component"
	"github.com/invopop/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ChartArgs is the argument object of a chart tool call. The extractor
// passes it through as the descriptor data, so any chart engine option is
// accepted.
type ChartArgs struct {
	Title  string         `json:"title,omitempty" jsonschema:"description=Optional chart title"`
	Option map[string]any `json:"option,omitempty" jsonschema:"description=Chart engine option object (axes and series and so on)"`
}

// Spec is a tool definition offered to an agent.
type Spec struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"inputSchema"`
}

var descriptions = map[string]string{
	"render_chart":         "Render a chart inline in the conversation.",
	"create_visualization": "Create a data visualization shown alongside the reply.",
}

// Specs returns a definition for each name in tools, or for
// component.DefaultChartTools when tools is empty.
func Specs(tools ...string) []Spec {
	if len(tools) == 0 {
		tools = component.DefaultChartTools
	}
	input := reflectObject[ChartArgs](true)
	out := make([]Spec, 0, len(tools))
	for _, name := range tools {
		out = append(out, Spec{
			Name:        name,
			Description: descriptions[name],
			InputSchema: input,
		})
	}
	return out
}

// DescriptorSchema is the JSON schema of a component descriptor carried in
// message metadata.
func DescriptorSchema() *jsonschema.Schema {
	s := reflectObject[component.Descriptor](false)
	s.Required = []string{"type", "data"}
	if t, ok := s.Properties.Get("type"); ok {
		t.Enum = []any{
			string(component.TypeChart),
			string(component.TypeTable),
			string(component.TypeImage),
			string(component.TypeFile),
			string(component.TypeCustom),
		}
	}
	return s
}

func reflectObject[T any](allowAdditional bool) *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: allowAdditional,
	}
	return r.Reflect(new(T))
}

// ErrArguments reports tool arguments that are not a JSON object.
var ErrArguments = errors.New("tool arguments must be a JSON object")

// FromCallToolParams converts an MCP tool call into a component.ToolCall
// with the given call id. Arguments may be a map, raw JSON, or any value
// that encodes to a JSON object. Missing arguments give a nil Args.
func FromCallToolParams(p *sdk.CallToolParams, id string) (component.ToolCall, error) {
	if p == nil {
		return component.ToolCall{}, errors.New("nil tool call params")
	}
	args, err := objectOf(p.Arguments)
	if err != nil {
		return component.ToolCall{}, fmt.Errorf("tool %q: %w", p.Name, err)
	}
	return component.ToolCall{Name: p.Name, Args: args, ID: id}, nil
}

func objectOf(v any) (map[string]any, error) {
	var raw []byte
	switch v := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode arguments: %w", err)
		}
		raw = b
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArguments, err)
	}
	return m, nil
}

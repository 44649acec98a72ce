package component

// Type identifies the kind of component a Descriptor describes.
type Type string

const (
	TypeChart  Type = "chart"
	TypeTable  Type = "table"
	TypeImage  Type = "image"
	TypeFile   Type = "file"
	TypeCustom Type = "custom"
)

// Known reports whether t is one of the types the dispatcher renders
// natively. TypeCustom and any unrecognized value are not known.
func (t Type) Known() bool {
	switch t {
	case TypeChart, TypeTable, TypeImage, TypeFile:
		return true
	default:
		return false
	}
}

// MetaToolCallID is the metadata key carrying the originating tool call id.
const MetaToolCallID = "tool_call_id"

// Descriptor is the normalized description of one renderable component.
// Data holds the decoded JSON payload; its expected shape depends on Type.
// Descriptors are values: nothing in this module mutates one after it has
// been produced.
type Descriptor struct {
	Type     Type           `json:"type"`
	Data     any            `json:"data"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// descriptorFromMap converts a decoded JSON object into a Descriptor. The
// object must carry a non-empty string type and a non-null data value.
func descriptorFromMap(m map[string]any) (Descriptor, bool) {
	typ, _ := m["type"].(string)
	data, hasData := m["data"]
	if typ == "" || !hasData || data == nil {
		return Descriptor{}, false
	}
	d := Descriptor{Type: Type(typ), Data: data}
	if meta, ok := m["metadata"].(map[string]any); ok {
		d.Metadata = meta
	}
	return d, true
}

// asDescriptor accepts the forms a nested descriptor may take: a decoded JSON
// object, or a Descriptor placed there by Go code.
func asDescriptor(v any) (Descriptor, bool) {
	switch c := v.(type) {
	case Descriptor:
		return c, c.Type != "" && c.Data != nil
	case *Descriptor:
		if c == nil {
			return Descriptor{}, false
		}
		return *c, c.Type != "" && c.Data != nil
	case map[string]any:
		return descriptorFromMap(c)
	default:
		return Descriptor{}, false
	}
}

// DescriptorFrom validates a decoded JSON object (or a Descriptor value) as
// a descriptor: it needs a non-empty string type and non-null data.
func DescriptorFrom(v any) (Descriptor, bool) {
	return asDescriptor(v)
}

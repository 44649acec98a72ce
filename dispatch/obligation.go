package dispatch

import "github.com/ggoodman/chatcomponents-go/component"

// Kind tags an Obligation variant.
type Kind string

const (
	KindChart   Kind = "chart"
	KindTable   Kind = "table"
	KindImage   Kind = "image"
	KindFile    Kind = "file"
	KindUnknown Kind = "unknown"
)

// Obligation is what a renderer is asked to draw. The set of implementations
// is closed to this package.
type Obligation interface {
	Kind() Kind
	// Issues lists data shape problems found while resolving.
	Issues() []string
	obligation()
}

type shape struct {
	Problems []string `json:"problems,omitempty"`
}

func (s *shape) Issues() []string { return s.Problems }
func (*shape) obligation()        {}

func (s *shape) problem(msg string) { s.Problems = append(s.Problems, msg) }

// Chart hands an engine-specific option object to the chart renderer. The
// option is passed through without validation.
type Chart struct {
	shape
	Option     any    `json:"option"`
	ToolCallID string `json:"toolCallId,omitempty"`
}

// Table is a header row plus data rows. Either may be empty when the
// descriptor omitted it.
type Table struct {
	shape
	Headers []string `json:"headers"`
	Rows    [][]any  `json:"rows"`
}

// Layout selects how an image set is arranged.
type Layout string

const (
	LayoutSingle   Layout = "single"
	LayoutGrid     Layout = "grid"
	LayoutCarousel Layout = "carousel"
)

// Image is one image record.
type Image struct {
	URL     string `json:"url" mapstructure:"url"`
	Alt     string `json:"alt,omitempty" mapstructure:"alt"`
	Caption string `json:"caption,omitempty" mapstructure:"caption"`
}

// Images is a normalized, non-empty image set.
type Images struct {
	shape
	Images  []Image `json:"images"`
	Layout  Layout  `json:"layout"`
	Caption string  `json:"caption,omitempty"`
}

// File describes a downloadable file. Size is in bytes; zero means unknown.
type File struct {
	shape
	Name string `json:"name"`
	Size int64  `json:"size,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Unknown carries a descriptor whose type has no dedicated renderer.
type Unknown struct {
	shape
	Descriptor component.Descriptor `json:"descriptor"`
}

func (*Chart) Kind() Kind   { return KindChart }
func (*Table) Kind() Kind   { return KindTable }
func (*Images) Kind() Kind  { return KindImage }
func (*File) Kind() Kind    { return KindFile }
func (*Unknown) Kind() Kind { return KindUnknown }

// Envelope is the JSON form of an obligation with its kind spelled out.
type Envelope struct {
	Kind       Kind       `json:"kind"`
	Obligation Obligation `json:"obligation"`
}

// Wrap builds the Envelope for ob.
func Wrap(ob Obligation) Envelope {
	return Envelope{Kind: ob.Kind(), Obligation: ob}
}

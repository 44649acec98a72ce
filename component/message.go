package component

// Message is the subset of an agent message the extractor reads. It mirrors
// the LangGraph wire shape: content is usually a string but may be any JSON
// value (for example a list of content parts).
type Message struct {
	Content          any            `json:"content"`
	AdditionalKwargs map[string]any `json:"additional_kwargs,omitempty"`
	ToolCalls        []ToolCall     `json:"tool_calls,omitempty"`
}

// ToolCall is a single tool invocation emitted by the model.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
	ID   string         `json:"id,omitempty"`
}

// Text returns the content when it is a string.
func (m Message) Text() (string, bool) {
	s, ok := m.Content.(string)
	return s, ok
}

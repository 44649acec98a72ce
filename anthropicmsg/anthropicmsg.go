// Package anthropicmsg adapts Anthropic Messages API responses to
// component.Message so their components can be extracted.
package anthropicmsg

import (
	"encoding/json"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ggoodman/chatcomponents-go/component"
)

// KwargStopReason is the additional_kwargs key that carries the response's
// stop reason.
const KwargStopReason = "stop_reason"

// FromMessage converts m. Text blocks are concatenated into the message
// content and tool_use blocks become tool calls, in order. Tool input that is
// not a JSON object is kept as {"raw": <input>}.
func FromMessage(m *anthropic.Message) component.Message {
	if m == nil {
		return component.Message{}
	}
	var content string
	var calls []component.ToolCall

	for _, block := range m.Content {
		switch block.Type {
		case "text":
			content += block.AsText().Text
		case "tool_use":
			tu := block.AsToolUse()
			calls = append(calls, component.ToolCall{
				ID:   tu.ID,
				Name: tu.Name,
				Args: toolArgs(tu.Input),
			})
		}
	}

	msg := component.Message{Content: content, ToolCalls: calls}
	if m.StopReason != "" {
		msg.AdditionalKwargs = map[string]any{KwargStopReason: string(m.StopReason)}
	}
	return msg
}

func toolArgs(input json.RawMessage) map[string]any {
	if len(input) == 0 {
		return nil
	}
	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return map[string]any{"raw": string(input)}
	}
	return args
}

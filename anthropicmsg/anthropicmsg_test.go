package anthropicmsg

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ggoodman/chatcomponents-go/component"
)

func decode(t *testing.T, body string) *anthropic.Message {
	t.Helper()
	var m anthropic.Message
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	return &m
}

func TestFromMessage_ToolUse(t *testing.T) {
	m := decode(t, `{
		"id": "msg_1",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "Here is the chart. "},
			{"type": "tool_use", "id": "toolu_1", "name": "render_chart", "input": {"series": [{"type": "bar"}]}},
			{"type": "text", "text": "Done."}
		],
		"usage": {"input_tokens": 1, "output_tokens": 2}
	}`)

	msg := FromMessage(m)
	if text, _ := msg.Text(); text != "Here is the chart. Done." {
		t.Fatalf("unexpected content %q", text)
	}
	if len(msg.ToolCalls) != 1 || msg.ToolCalls[0].ID != "toolu_1" || msg.ToolCalls[0].Name != "render_chart" {
		t.Fatalf("unexpected tool calls %+v", msg.ToolCalls)
	}
	if msg.AdditionalKwargs[KwargStopReason] != "tool_use" {
		t.Fatalf("stop reason not carried: %v", msg.AdditionalKwargs)
	}

	d, ok := component.Extract(msg)
	if !ok || d.Type != component.TypeChart || d.Metadata[component.MetaToolCallID] != "toolu_1" {
		t.Fatalf("unexpected descriptor %+v ok=%v", d, ok)
	}
}

func TestFromMessage_FencedText(t *testing.T) {
	m := decode(t, `{
		"id": "msg_2",
		"type": "message",
		"role": "assistant",
		"model": "claude-test",
		"content": [{"type": "text", "text": "`+"```table\\n{\\\"headers\\\":[\\\"a\\\"],\\\"rows\\\":[[1]]}\\n```"+`"}],
		"usage": {"input_tokens": 1, "output_tokens": 2}
	}`)
	d, ok := component.Extract(FromMessage(m))
	if !ok || d.Type != component.TypeTable {
		t.Fatalf("unexpected descriptor %+v ok=%v", d, ok)
	}
}

func TestToolArgs(t *testing.T) {
	if got := toolArgs(json.RawMessage(`"just a string"`)); got["raw"] != `"just a string"` {
		t.Fatalf("non-object input should be kept raw, got %v", got)
	}
	if got := toolArgs(nil); got != nil {
		t.Fatalf("empty input should give nil args, got %v", got)
	}
	if got := toolArgs(json.RawMessage(`{"a":1}`)); got["a"] != 1.0 {
		t.Fatalf("unexpected args %v", got)
	}
}

func TestFromMessage_Nil(t *testing.T) {
	if _, ok := component.Extract(FromMessage(nil)); ok {
		t.Fatal("nil message has no component")
	}
}

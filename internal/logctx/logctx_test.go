package logctx

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestHandler_AddsContextGroups(t *testing.T) {
	var buf bytes.Buffer
	log := New(slog.New(slog.NewJSONHandler(&buf, nil))).With("component", "test")

	ctx := WithRequestData(context.Background(), &RequestData{RequestID: "r1", Method: "POST", Path: "/v1/extract"})
	ctx = WithMessageData(ctx, &MessageData{Index: 3, Source: "batch.jsonl"})
	ctx = WithRenderData(ctx, &RenderData{Target: "m3", Kind: "chart"})
	log.InfoContext(ctx, "extract.ok")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["component"] != "test" {
		t.Fatalf("With attrs lost: %v", rec)
	}
	req, _ := rec["req"].(map[string]any)
	msg, _ := rec["message"].(map[string]any)
	rnd, _ := rec["render"].(map[string]any)
	if req["id"] != "r1" || msg["index"] != 3.0 || msg["source"] != "batch.jsonl" || rnd["kind"] != "chart" {
		t.Fatalf("unexpected record %v", rec)
	}
}

func TestNew_DoesNotDoubleWrap(t *testing.T) {
	l := New(slog.Default())
	if New(l) != l {
		t.Fatal("already decorated logger should be returned as is")
	}
}

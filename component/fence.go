package component

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Fence tags recognized inside text content.
const (
	FenceChart = "chart"
	FenceTable = "table"
)

var fencePatterns = map[string]*regexp.Regexp{
	FenceChart: regexp.MustCompile("(?s)```chart\\r?\\n(.*?)\\r?\\n```"),
	FenceTable: regexp.MustCompile("(?s)```table\\r?\\n(.*?)\\r?\\n```"),
}

// FindFence returns the body of the first fenced block tagged tag. Only the
// first occurrence is considered.
func FindFence(text, tag string) (string, bool) {
	re, ok := fencePatterns[tag]
	if !ok {
		return "", false
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FromFence parses a fenced block body as JSON and wraps it in a Descriptor
// of the type named by tag. It is used both by the extractor and by
// document renderers that meet a chart/table code block directly.
func FromFence(tag, body string) (Descriptor, error) {
	var typ Type
	switch tag {
	case FenceChart:
		typ = TypeChart
	case FenceTable:
		typ = TypeTable
	default:
		return Descriptor{}, fmt.Errorf("unsupported fence tag %q", tag)
	}
	var data any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return Descriptor{}, fmt.Errorf("parse %s fence: %w", tag, err)
	}
	if data == nil {
		return Descriptor{}, fmt.Errorf("parse %s fence: null payload", tag)
	}
	return Descriptor{Type: typ, Data: data}, nil
}

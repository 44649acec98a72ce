package directive

import (
	"strings"

	"github.com/ggoodman/chatcomponents-go/component"
)

// Kinds lists the directive names Rewrite recognizes.
var Kinds = []string{"chart", "table"}

const marker = ":::"

// Fence renders body as a fenced block tagged tag.
func Fence(tag, body string) string {
	return "```" + tag + "\n" + body + "\n```"
}

// Rewrite converts every :::chart{...}::: and :::table{...}::: directive in
// text into a fenced block. Text without directives is returned unchanged.
func Rewrite(text string) string {
	for _, kind := range Kinds {
		text = rewriteKind(text, kind)
	}
	return text
}

func rewriteKind(text, kind string) string {
	open := marker + kind
	if !strings.Contains(text, open) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for {
		i := strings.Index(text[pos:], open)
		if i < 0 {
			break
		}
		start := pos + i
		payload, end, ok := scan(text, start+len(open))
		if !ok {
			// Not a directive here; keep the marker and continue after it.
			b.WriteString(text[pos : start+len(open)])
			pos = start + len(open)
			continue
		}
		b.WriteString(text[pos:start])
		b.WriteString(Fence(kind, payload))
		pos = end
	}
	b.WriteString(text[pos:])
	return b.String()
}

// scan parses `\s*{payload}\s*:::` starting at i. It returns the payload, the
// offset just past the closing marker, and whether a directive was found.
func scan(text string, i int) (string, int, bool) {
	i = skipSpace(text, i)
	if i >= len(text) || text[i] != '{' {
		return "", 0, false
	}
	bodyStart := i + 1

	if close, ok := balancedClose(text, i); ok {
		if end, ok := closingMarker(text, close+1); ok {
			return text[bodyStart:close], end, true
		}
	}

	// Unbalanced payload: first "}" followed by the closing marker.
	for j := bodyStart; j < len(text); j++ {
		if text[j] != '}' {
			continue
		}
		if end, ok := closingMarker(text, j+1); ok {
			return text[bodyStart:j], end, true
		}
	}
	return "", 0, false
}

// balancedClose returns the index of the brace matching the one at open,
// ignoring braces inside double-quoted strings.
func balancedClose(text string, open int) (int, bool) {
	depth := 0
	inString := false
	for j := open; j < len(text); j++ {
		c := text[j]
		if inString {
			switch c {
			case '\\':
				j++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

func closingMarker(text string, i int) (int, bool) {
	i = skipSpace(text, i)
	if strings.HasPrefix(text[i:], marker) {
		return i + len(marker), true
	}
	return 0, false
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

// RewriteMessage applies Rewrite to msg's content when it is a string.
// Other content shapes are returned unchanged.
func RewriteMessage(msg component.Message) component.Message {
	if text, ok := msg.Text(); ok {
		msg.Content = Rewrite(text)
	}
	return msg
}

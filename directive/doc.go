// Package directive rewrites block directives into fenced markers.
//
// Agents sometimes emit components with a directive syntax instead of a
// fenced code block:
//
//	:::chart{"option": {...}}:::
//	:::table{"headers": [...], "rows": [...]}:::
//
// Rewrite replaces each directive in place with the canonical fenced form
// (```chart / ```table) that document renderers and component.Extract
// understand. The payload is copied verbatim; it is never parsed.
//
// The scanner tracks brace depth, skipping braces inside JSON string literals,
// so payloads containing nested objects or a literal "}:::" inside a string are
// not truncated. Unbalanced payloads fall back to the first "}" followed by
// ":::". Directives without a terminator are left as they are.
package directive

// Package httpapi exposes component extraction over HTTP for services that
// render agent messages outside of Go.
//
// Routes:
//
//	POST /v1/extract     component.Message -> {strategy, descriptor?, obligation?}
//	POST /v1/preprocess  {"text": "..."}   -> {"text": "..."} with directives rewritten
//	POST /v1/resolve     descriptor        -> {"obligation": envelope|null}
//	GET  /v1/schema      descriptor schema and chart tool definitions
//	GET  /metrics        Prometheus counters
//
// /v1/extract accepts ?preprocess=true|false to override the handler's
// default directive rewriting. Request bodies must be application/json;
// other media types are rejected with 415 and malformed JSON with 400. Error
// bodies have the shape {"error":{"code":<status>,"message":"..."}}.
//
// Message data problems are never HTTP errors: a message without a
// component yields strategy "none", and shape problems are reported inside
// the obligation's "problems" list.
package httpapi

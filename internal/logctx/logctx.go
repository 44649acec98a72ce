package logctx

import (
	"context"
	"log/slog"
)

// Handler decorates records with the request, message and render data
// found in the record's context.
type Handler struct {
	slog.Handler
}

// New wraps l's handler so context data is attached to every record.
func New(l *slog.Logger) *slog.Logger {
	if _, ok := l.Handler().(Handler); ok {
		return l
	}
	return slog.New(Handler{Handler: l.Handler()})
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("user_agent", rd.UserAgent),
			slog.String("remote_addr", rd.RemoteAddr),
			slog.String("path", rd.Path),
		))
	}

	if md, ok := ctx.Value(messageDataKey{}).(*MessageData); ok {
		attrs := []any{slog.Int("index", md.Index)}
		if md.Source != "" {
			attrs = append(attrs, slog.String("source", md.Source))
		}
		r.AddAttrs(slog.Group("message", attrs...))
	}

	if rd, ok := ctx.Value(renderDataKey{}).(*RenderData); ok {
		r.AddAttrs(slog.Group("render",
			slog.String("target", rd.Target),
			slog.String("kind", rd.Kind),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type requestDataKey struct{}

type RequestData struct {
	RequestID  string
	Method     string
	UserAgent  string
	RemoteAddr string
	Path       string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

type messageDataKey struct{}

// MessageData identifies the message being processed: its position in a
// batch and the file or stream it came from.
type MessageData struct {
	Index  int
	Source string
}

func WithMessageData(ctx context.Context, data *MessageData) context.Context {
	return context.WithValue(ctx, messageDataKey{}, data)
}

type renderDataKey struct{}

type RenderData struct {
	Target string
	Kind   string
}

func WithRenderData(ctx context.Context, data *RenderData) context.Context {
	return context.WithValue(ctx, renderDataKey{}, data)
}

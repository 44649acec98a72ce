// Package logtest routes slog output into testing.TB and records event
// messages so tests can assert on diagnostics.
package logtest

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
)

// Bridge is a slog.Handler that writes every record through t.Log and keeps
// the record messages for later inspection.
type Bridge struct {
	slog.Handler
	t    testing.TB
	buf  *bytes.Buffer
	mu   *sync.Mutex
	msgs *[]string
}

// Handle implements slog.Handler.
func (b *Bridge) Handle(ctx context.Context, rec slog.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.Handler.Handle(ctx, rec); err != nil {
		return err
	}
	*b.msgs = append(*b.msgs, rec.Message)

	output, err := io.ReadAll(b.buf)
	if err != nil {
		return err
	}
	b.t.Helper()
	b.t.Log(string(bytes.TrimSuffix(output, []byte("\n"))))
	return nil
}

// WithAttrs implements slog.Handler.
func (b *Bridge) WithAttrs(attrs []slog.Attr) slog.Handler {
	nb := *b
	nb.Handler = b.Handler.WithAttrs(attrs)
	return &nb
}

// WithGroup implements slog.Handler.
func (b *Bridge) WithGroup(name string) slog.Handler {
	nb := *b
	nb.Handler = b.Handler.WithGroup(name)
	return &nb
}

// Messages returns the messages logged so far, in order.
func (b *Bridge) Messages() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(*b.msgs)
}

// Logged reports whether a record with message msg was handled.
func (b *Bridge) Logged(msg string) bool {
	return slices.Contains(b.Messages(), msg)
}

// NewBridge returns a debug-level Bridge bound to t.
func NewBridge(t testing.TB) *Bridge {
	buf := &bytes.Buffer{}
	return &Bridge{
		Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		t:       t,
		buf:     buf,
		mu:      &sync.Mutex{},
		msgs:    &[]string{},
	}
}

// New returns a logger writing through a fresh Bridge, and the Bridge.
func New(t testing.TB) (*slog.Logger, *Bridge) {
	b := NewBridge(t)
	return slog.New(b), b
}

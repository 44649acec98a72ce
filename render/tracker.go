package render

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Ticket identifies one in-flight render of Input into Target.
type Ticket struct {
	Target string
	ID     string
	Input  string

	cancel context.CancelFunc
}

// Tracker hands out process-unique render identifiers and decides whether a
// completed render is still relevant. Relevance is by input identity: a
// result counts only if its input is still the latest input for its target
// and it was not superseded while in flight, whatever order renders complete
// in.
type Tracker struct {
	prefix string

	mu      sync.Mutex
	targets map[string]*slot
}

type slot struct {
	input string
	live  map[string]context.CancelFunc
}

func (s *slot) cancelAll() {
	for _, cancel := range s.live {
		cancel()
	}
}

// NewTracker returns a Tracker whose identifiers start with prefix.
func NewTracker(prefix string) *Tracker {
	return &Tracker{prefix: prefix, targets: make(map[string]*slot)}
}

// Begin records input as the latest input for target. If target previously
// held a different input, every render still in flight for it is cancelled
// and its result will be discarded even if the input returns. The returned
// context is cancelled when the render is superseded or finished.
func (t *Tracker) Begin(ctx context.Context, target, input string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(ctx)
	tk := Ticket{
		Target: target,
		ID:     t.prefix + "-" + uuid.NewString(),
		Input:  input,
		cancel: cancel,
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.targets[target]
	if !ok || s.input != input {
		if ok {
			s.cancelAll()
		}
		s = &slot{input: input, live: make(map[string]context.CancelFunc)}
		t.targets[target] = s
	}
	s.live[tk.ID] = cancel
	return ctx, tk
}

// Finish releases tk and reports whether its result should be kept.
func (t *Tracker) Finish(tk Ticket) bool {
	if tk.cancel != nil {
		tk.cancel()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.targets[tk.Target]
	if !ok {
		return false
	}
	if _, live := s.live[tk.ID]; !live {
		return false
	}
	delete(s.live, tk.ID)
	return true
}

// Latest returns the most recent input begun for target.
func (t *Tracker) Latest(target string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.targets[target]
	if !ok {
		return "", false
	}
	return s.input, true
}

// Forget drops target, cancelling any render still in flight for it. Results
// for the target that complete afterwards are discarded.
func (t *Tracker) Forget(target string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok := t.targets[target]; ok {
		s.cancelAll()
		delete(t.targets, target)
	}
}

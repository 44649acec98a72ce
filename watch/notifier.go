package watch

import "sync"

// notifier coalesces change signals. Each subscriber channel holds at most
// one pending signal, so a burst of Notify calls is seen as a single change.
type notifier struct {
	mu          sync.RWMutex
	subscribers []chan struct{}
	closed      bool
}

func (n *notifier) Notify() {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	for _, ch := range n.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe returns a channel that receives a signal after Notify. The
// channel is closed by Close.
func (n *notifier) Subscribe() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	ch := make(chan struct{}, 1)
	n.subscribers = append(n.subscribers, ch)
	return ch
}

func (n *notifier) Close() {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	subs := n.subscribers
	n.subscribers = nil
	n.mu.Unlock()

	for _, ch := range subs {
		close(ch)
	}
}

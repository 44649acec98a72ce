package watch

import "testing"

func TestNotifier_Coalesces(t *testing.T) {
	n := &notifier{}
	sub := n.Subscribe()
	for i := 0; i < 10; i++ {
		n.Notify()
	}
	<-sub
	select {
	case <-sub:
		t.Fatal("burst should be delivered as one signal")
	default:
	}

	n.Close()
	if _, ok := <-sub; ok {
		t.Fatal("subscriber should be closed")
	}
	n.Notify()
	n.Close()
	if _, ok := <-n.Subscribe(); ok {
		t.Fatal("subscribing after close yields a closed channel")
	}
}

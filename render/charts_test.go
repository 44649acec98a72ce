package render

import (
	"context"
	"errors"
	"testing"

	"github.com/ggoodman/chatcomponents-go/dispatch"
)

type fakeInstance struct {
	region   string
	option   any
	disposed bool
	setErr   error
}

func (i *fakeInstance) SetOption(_ context.Context, option any) error {
	if i.setErr != nil {
		return i.setErr
	}
	i.option = option
	return nil
}

func (i *fakeInstance) Dispose() { i.disposed = true }

type fakeChartEngine struct {
	instances []*fakeInstance
	setErr    error
}

func (e *fakeChartEngine) Init(_ context.Context, region string) (ChartInstance, error) {
	inst := &fakeInstance{region: region, setErr: e.setErr}
	e.instances = append(e.instances, inst)
	return inst, nil
}

func TestChartRegions_RemountDisposesPrevious(t *testing.T) {
	eng := &fakeChartEngine{}
	c := NewChartRegions(eng)

	if err := c.Mount(t.Context(), "msg-1", &dispatch.Chart{Option: "a"}); err != nil {
		t.Fatalf("mount: %v", err)
	}
	if err := c.Mount(t.Context(), "msg-1", &dispatch.Chart{Option: "b"}); err != nil {
		t.Fatalf("remount: %v", err)
	}
	if len(eng.instances) != 2 {
		t.Fatalf("expected two instances, got %d", len(eng.instances))
	}
	if !eng.instances[0].disposed {
		t.Fatal("previous instance should be disposed before re-init")
	}
	if eng.instances[1].disposed || eng.instances[1].option != "b" {
		t.Fatalf("current instance wrong: %+v", eng.instances[1])
	}
	if c.Len() != 1 {
		t.Fatalf("expected one live region, got %d", c.Len())
	}

	c.Unmount("msg-1")
	if !eng.instances[1].disposed || c.Len() != 0 {
		t.Fatal("unmount should dispose the instance")
	}
	c.Unmount("missing")
}

func TestChartRegions_SetOptionFailureDisposes(t *testing.T) {
	eng := &fakeChartEngine{setErr: errors.New("bad option")}
	c := NewChartRegions(eng)
	if err := c.Mount(t.Context(), "r", &dispatch.Chart{Option: 1}); err == nil {
		t.Fatal("expected error")
	}
	if !eng.instances[0].disposed || c.Len() != 0 {
		t.Fatal("failed instance must be disposed and not retained")
	}
}

func TestChartRegions_Close(t *testing.T) {
	eng := &fakeChartEngine{}
	c := NewChartRegions(eng)
	_ = c.Mount(t.Context(), "a", &dispatch.Chart{})
	_ = c.Mount(t.Context(), "b", &dispatch.Chart{})
	c.Close()
	for _, inst := range eng.instances {
		if !inst.disposed {
			t.Fatalf("instance %s not disposed", inst.region)
		}
	}
	if eng.instances[0].option != nil {
		t.Fatal("nil option should not be applied")
	}
}

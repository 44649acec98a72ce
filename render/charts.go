package render

import (
	"context"
	"fmt"
	"sync"

	"github.com/ggoodman/chatcomponents-go/dispatch"
)

// ChartEngine creates native chart instances bound to a visual region.
type ChartEngine interface {
	Init(ctx context.Context, region string) (ChartInstance, error)
}

// ChartInstance is a live chart engine handle. Dispose releases it.
type ChartInstance interface {
	SetOption(ctx context.Context, option any) error
	Dispose()
}

// ChartRegions owns at most one ChartInstance per region.
type ChartRegions struct {
	engine ChartEngine

	mu      sync.Mutex
	regions map[string]ChartInstance
}

// NewChartRegions returns an empty region set backed by engine.
func NewChartRegions(engine ChartEngine) *ChartRegions {
	return &ChartRegions{engine: engine, regions: make(map[string]ChartInstance)}
}

// Mount draws ob into region. An instance already mounted in region is
// disposed before the new one is initialized.
func (c *ChartRegions) Mount(ctx context.Context, region string, ob *dispatch.Chart) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.regions[region]; ok {
		old.Dispose()
		delete(c.regions, region)
	}

	inst, err := c.engine.Init(ctx, region)
	if err != nil {
		return fmt.Errorf("init chart region %q: %w", region, err)
	}
	if ob.Option != nil {
		if err := inst.SetOption(ctx, ob.Option); err != nil {
			inst.Dispose()
			return fmt.Errorf("set chart option in region %q: %w", region, err)
		}
	}
	c.regions[region] = inst
	return nil
}

// Unmount disposes the instance in region, if any.
func (c *ChartRegions) Unmount(region string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if inst, ok := c.regions[region]; ok {
		inst.Dispose()
		delete(c.regions, region)
	}
}

// Len reports how many regions hold a live instance.
func (c *ChartRegions) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.regions)
}

// Close disposes every instance.
func (c *ChartRegions) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for region, inst := range c.regions {
		inst.Dispose()
		delete(c.regions, region)
	}
}

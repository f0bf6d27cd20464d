package collector

import "github.com/Carmen-Shannon/helix-go/engine/renderer/render_item"

// collectorConfig holds the settings shared by both collectors.
type collectorConfig struct {
	maxItems        int
	initialCapacity int
	workers         int
}

// CollectorBuilderOption is a functional option for configuring a collector.
type CollectorBuilderOption func(*collectorConfig)

// WithPoolLimit caps the number of render items one collection may issue. Zero means unlimited.
//
// Parameters:
//   - n: the item limit
//
// Returns:
//   - CollectorBuilderOption: a function that applies the limit
func WithPoolLimit(n int) CollectorBuilderOption {
	return func(c *collectorConfig) {
		c.maxItems = max(n, 0)
	}
}

// WithInitialCapacity preallocates n render items.
func WithInitialCapacity(n int) CollectorBuilderOption {
	return func(c *collectorConfig) {
		c.initialCapacity = max(n, 0)
	}
}

// WithWorkers traverses the root's children on n workers. Values below 2 keep collection on
// the calling goroutine. Only RenderCollector uses it.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - CollectorBuilderOption: a function that applies the worker count
func WithWorkers(n int) CollectorBuilderOption {
	return func(c *collectorConfig) {
		c.workers = n
	}
}

func newConfig(options []CollectorBuilderOption) collectorConfig {
	cfg := collectorConfig{}
	for _, option := range options {
		option(&cfg)
	}
	return cfg
}

func (c collectorConfig) poolOptions() []render_item.PoolBuilderOption {
	opts := []render_item.PoolBuilderOption{render_item.WithMaxItems(c.maxItems)}
	if c.initialCapacity > 0 {
		opts = append(opts, render_item.WithInitialCapacity(c.initialCapacity))
	}
	return opts
}

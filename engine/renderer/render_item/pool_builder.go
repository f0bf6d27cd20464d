package render_item

// PoolBuilderOption is a functional option for configuring a Pool.
type PoolBuilderOption func(*Pool)

// WithMaxItems limits the pool to n items. Zero or negative means unlimited.
//
// Parameters:
//   - n: the item limit
//
// Returns:
//   - PoolBuilderOption: a function that applies the limit to a pool
func WithMaxItems(n int) PoolBuilderOption {
	return func(p *Pool) {
		p.maxItems = n
	}
}

// WithInitialCapacity preallocates n items.
func WithInitialCapacity(n int) PoolBuilderOption {
	return func(p *Pool) {
		p.items = make([]*RenderItem, n)
		for i := range p.items {
			p.items[i] = &RenderItem{}
		}
		p.highWater = n
	}
}

package render_item

import (
	"fmt"

	"github.com/Carmen-Shannon/helix-go/common"
)

// Pool hands out RenderItems for one frame. Reset rewinds the pool in constant time; items
// issued before a Reset are reused, zeroed, by later Get calls. The backing storage only grows
// when a frame needs more items than any previous frame.
//
// Pool is not safe for concurrent use.
type Pool struct {
	items     []*RenderItem
	next      int
	maxItems  int
	gen       uint64
	highWater int
}

// NewPool creates an empty pool.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - *Pool: the pool
func NewPool(options ...PoolBuilderOption) *Pool {
	p := &Pool{}
	for _, option := range options {
		option(p)
	}
	return p
}

// Reset makes every item available again. Items handed out before the call must no longer be
// referenced by the caller.
func (p *Pool) Reset() {
	p.next = 0
	p.gen++
}

// Get returns a zeroed item.
//
// Returns:
//   - *RenderItem: the item, valid until the next Reset
//   - error: ErrPoolExhausted when the pool's limit is reached
func (p *Pool) Get() (*RenderItem, error) {
	if p.next < len(p.items) {
		item := p.items[p.next]
		item.Reset()
		p.next++
		return item, nil
	}

	if p.maxItems > 0 && len(p.items) >= p.maxItems {
		return nil, fmt.Errorf("%w: limit %d", ErrPoolExhausted, p.maxItems)
	}

	item := &RenderItem{}
	p.items = append(p.items, item)
	p.next++
	if len(p.items) > p.highWater {
		p.highWater = len(p.items)
		common.Logger().Debug("render item pool grew", "size", p.highWater)
	}
	return item, nil
}

// Len returns the number of items issued since the last Reset.
func (p *Pool) Len() int {
	return p.next
}

// Cap returns the number of allocated items.
func (p *Pool) Cap() int {
	return len(p.items)
}

// HighWaterMark returns the largest number of items ever allocated.
func (p *Pool) HighWaterMark() int {
	return p.highWater
}

// Generation counts Reset calls.
func (p *Pool) Generation() uint64 {
	return p.gen
}

package render_item

import "sort"

// List is an ordered sequence of item references. It does not own the items; they belong to
// the Pool that issued them.
type List struct {
	items []*RenderItem
}

// NewList creates an empty list.
func NewList() *List {
	return &List{}
}

// Reset empties the list, keeping its storage.
func (l *List) Reset() {
	clear(l.items)
	l.items = l.items[:0]
}

// Append adds an item at the end.
func (l *List) Append(item *RenderItem) {
	l.items = append(l.items, item)
}

// AppendList adds every item of other, in order.
func (l *List) AppendList(other *List) {
	l.items = append(l.items, other.items...)
}

// Items returns the backing slice. It is valid until the list is next modified.
func (l *List) Items() []*RenderItem {
	return l.items
}

// Len returns the number of items.
func (l *List) Len() int {
	return len(l.items)
}

// At returns the i-th item.
func (l *List) At(i int) *RenderItem {
	return l.items[i]
}

// SortFrontToBack orders items by ascending depth, breaking ties by render order hint.
// The sort is stable so equal items keep collection order.
func (l *List) SortFrontToBack() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		return orderHint(a) < orderHint(b)
	})
}

// SortBackToFront orders items by descending depth, breaking ties by render order hint.
func (l *List) SortBackToFront() {
	sort.SliceStable(l.items, func(i, j int) bool {
		a, b := l.items[i], l.items[j]
		if a.Depth != b.Depth {
			return a.Depth > b.Depth
		}
		return orderHint(a) < orderHint(b)
	})
}

func orderHint(r *RenderItem) int {
	if r.Material == nil {
		return 0
	}
	return r.Material.RenderOrderHint()
}

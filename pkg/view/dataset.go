package view

// DataSet is an id-keyed collection that keeps insertion order. Update
// replaces items by id and appends unknown ones.
type DataSet[T any] struct {
	key   func(T) string
	order []string
	items map[string]T
}

// NewDataSet creates a DataSet keyed by key and filled with items.
func NewDataSet[T any](key func(T) string, items ...T) *DataSet[T] {
	ds := &DataSet[T]{key: key, items: make(map[string]T, len(items))}
	ds.Update(items...)
	return ds
}

// Update applies a batch of items.
func (ds *DataSet[T]) Update(items ...T) {
	for _, it := range items {
		id := ds.key(it)
		if _, ok := ds.items[id]; !ok {
			ds.order = append(ds.order, id)
		}
		ds.items[id] = it
	}
}

// Get returns the item with the given id.
func (ds *DataSet[T]) Get(id string) (T, bool) {
	it, ok := ds.items[id]
	return it, ok
}

// Each calls fn for every item in insertion order.
func (ds *DataSet[T]) Each(fn func(T)) {
	for _, id := range ds.order {
		fn(ds.items[id])
	}
}

// All returns a copy of every item in insertion order.
func (ds *DataSet[T]) All() []T {
	out := make([]T, 0, len(ds.order))
	ds.Each(func(it T) { out = append(out, it) })
	return out
}

// Len returns the number of items.
func (ds *DataSet[T]) Len() int { return len(ds.order) }

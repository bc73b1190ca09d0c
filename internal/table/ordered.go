package table

// OrderedMap is a map that remembers the order in which keys were first set.
// Overwriting an existing key keeps its original position.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{values: make(map[K]V)}
}

// Set stores v under k. A new key is appended to the key order.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k has been set.
func (m *OrderedMap[K, V]) Has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len returns the number of keys.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Each calls fn for every entry in insertion order.
func (m *OrderedMap[K, V]) Each(fn func(k K, v V)) {
	for _, k := range m.keys {
		fn(k, m.values[k])
	}
}

// Record is a keyed row whose key order is significant, used to build tables
// from already-keyed data.
type Record = OrderedMap[string, any]

// NewRecord returns an empty Record.
func NewRecord() *Record {
	return NewOrderedMap[string, any]()
}

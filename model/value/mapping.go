package value

// Mapping is an insertion ordered string keyed map of values.
type Mapping struct {
	keys   []string
	values []Value
	index  map[string]int
}

// NewMapping creates an empty mapping
func NewMapping() *Mapping {
	return &Mapping{index: make(map[string]int)}
}

// Len returns number of entries
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns an entry
func (m *Mapping) Get(key string) (Value, bool) {
	if m == nil {
		return Null(), false
	}
	i, ok := m.index[key]
	if !ok {
		return Null(), false
	}
	return m.values[i], true
}

// Has returns true when key is present
func (m *Mapping) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Put adds or replaces an entry; a replaced entry keeps its position
func (m *Mapping) Put(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.values[i] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.values = append(m.values, v)
}

// Delete removes an entry
func (m *Mapping) Delete(key string) {
	i, ok := m.index[key]
	if !ok {
		return
	}
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	m.values = append(m.values[:i], m.values[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
}

// Keys returns keys in insertion order
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Range iterates entries in insertion order until fn returns false
func (m *Mapping) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for i, key := range m.keys {
		if !fn(key, m.values[i]) {
			return
		}
	}
}

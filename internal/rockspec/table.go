package rockspec

// Value is any scalar or container a restricted table literal can hold:
// string, float64, bool, nil, *Table, or []Value (an array-style table).
type Value interface{}

// Table is an ordered key→Value map produced by Parse. It is the tagged
// value tree spec.md §9 calls for: rockspecs and manifests are evaluated
// into a Table, never into executable code. Iteration order matches the
// order keys first appeared in the source. Encode keeps that order for the
// top-level table only; keys of nested tables are written sorted.
type Table struct {
	keys   []string
	values map[string]Value
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{values: make(map[string]Value)}
}

// Set inserts or replaces key, preserving first-seen order.
func (t *Table) Set(key string, v Value) {
	if _, ok := t.values[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.values[key] = v
}

// Get returns the value at key, or nil if absent.
func (t *Table) Get(key string) (Value, bool) {
	v, ok := t.values[key]
	return v, ok
}

// Keys returns the table's keys in first-seen order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// GetString returns key's value as a string, or "" with ok=false if
// absent or not a string.
func (t *Table) GetString(key string) (string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetTable returns key's value as a *Table, or nil with ok=false if
// absent or not a table.
func (t *Table) GetTable(key string) (*Table, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Table)
	return sub, ok
}

// GetStringList returns key's value as a list of strings: accepts either
// an array-style table ([]Value of strings) or a *Table whose values (in
// key order) are all strings.
func (t *Table) GetStringList(key string) ([]string, bool) {
	v, ok := t.Get(key)
	if !ok {
		return nil, false
	}
	switch vv := v.(type) {
	case []Value:
		out := make([]string, 0, len(vv))
		for _, item := range vv {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case *Table:
		out := make([]string, 0, len(vv.keys))
		for _, k := range vv.keys {
			s, ok := vv.values[k].(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

package rockspec

import "github.com/pkg/errors"

// tableMapper walks a *Table accumulating the first error it hits,
// mirroring the teacher's tomlMapper idiom (toml.go): every read helper
// checks mapper.Error first and becomes a no-op once set, so callers can
// chain a run of reads and check the error exactly once at the end.
type tableMapper struct {
	Table *Table
	Error error
}

func readString(m *tableMapper, key string, required bool) string {
	if m.Error != nil {
		return ""
	}
	s, ok := m.Table.GetString(key)
	if !ok {
		if required {
			m.Error = errors.Errorf("rockspec: missing required string field %q", key)
		}
		return ""
	}
	return s
}

func readStringList(m *tableMapper, key string) []string {
	if m.Error != nil {
		return nil
	}
	list, ok := m.Table.GetStringList(key)
	if !ok {
		if _, present := m.Table.Get(key); present {
			m.Error = errors.Errorf("rockspec: field %q is not a list of strings", key)
		}
		return nil
	}
	return list
}

func readSubtable(m *tableMapper, key string) *Table {
	if m.Error != nil {
		return nil
	}
	sub, ok := m.Table.GetTable(key)
	if !ok {
		return nil
	}
	return sub
}

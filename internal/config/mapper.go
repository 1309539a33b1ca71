package config

import (
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
)

// tomlMapper accumulates the first error hit across a sequence of key
// reads, the way the teacher's own tomlMapper does for rawProject/
// rawLockedProject, so a Config load can report one wrapped error
// instead of failing on the first bad key.
type tomlMapper struct {
	Tree  *toml.TomlTree
	Error error
}

func readString(m *tomlMapper, key string) (string, bool) {
	if m.Error != nil || !m.Tree.Has(key) {
		return "", false
	}
	v, ok := m.Tree.Get(key).(string)
	if !ok {
		m.Error = errors.Errorf("%s: expected a string", key)
		return "", false
	}
	return v, true
}

func readBool(m *tomlMapper, key string) (bool, bool) {
	if m.Error != nil || !m.Tree.Has(key) {
		return false, false
	}
	v, ok := m.Tree.Get(key).(bool)
	if !ok {
		m.Error = errors.Errorf("%s: expected a bool", key)
		return false, false
	}
	return v, true
}

func readStringList(m *tomlMapper, key string) ([]string, bool) {
	if m.Error != nil || !m.Tree.Has(key) {
		return nil, false
	}
	raw, ok := m.Tree.Get(key).([]interface{})
	if !ok {
		m.Error = errors.Errorf("%s: expected an array of strings", key)
		return nil, false
	}
	out := make([]string, len(raw))
	for i, item := range raw {
		s, ok := item.(string)
		if !ok {
			m.Error = errors.Errorf("%s[%d]: expected a string", key, i)
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func readStringMap(m *tomlMapper, key string) (map[string]string, bool) {
	if m.Error != nil || !m.Tree.Has(key) {
		return nil, false
	}
	sub, ok := m.Tree.Get(key).(*toml.TomlTree)
	if !ok {
		m.Error = errors.Errorf("%s: expected a table", key)
		return nil, false
	}
	out := make(map[string]string, len(sub.Keys()))
	for _, k := range sub.Keys() {
		s, ok := sub.Get(k).(string)
		if !ok {
			m.Error = errors.Errorf("%s.%s: expected a string", key, k)
			return nil, false
		}
		out[k] = s
	}
	return out, true
}

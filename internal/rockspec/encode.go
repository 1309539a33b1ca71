package rockspec

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encode renders t as a pretty-printed Lua-style table record: braces,
// quoted strings, ordered lists, matching the on-disk format spec.md §6
// calls for (the InstalledSet file and the packer's exported rockspec
// both go through this).
func Encode(t *Table) string {
	var b strings.Builder
	for _, k := range t.Keys() {
		v, _ := t.Get(k)
		fmt.Fprintf(&b, "%s = %s\n", k, encodeValue(v, 0))
	}
	return b.String()
}

func encodeValue(v Value, depth int) string {
	switch vv := v.(type) {
	case nil:
		return "nil"
	case bool:
		if vv {
			return "true"
		}
		return "false"
	case string:
		return strconv.Quote(vv)
	case float64:
		if vv == float64(int64(vv)) {
			return strconv.FormatInt(int64(vv), 10)
		}
		return strconv.FormatFloat(vv, 'g', -1, 64)
	case []Value:
		return encodeArray(vv, depth)
	case []string:
		items := make([]Value, len(vv))
		for i, s := range vv {
			items[i] = s
		}
		return encodeArray(items, depth)
	case *Table:
		return encodeTable(vv, depth)
	default:
		return fmt.Sprintf("%q", fmt.Sprint(vv))
	}
}

func encodeArray(items []Value, depth int) string {
	if len(items) == 0 {
		return "{}"
	}
	indent := strings.Repeat("   ", depth+1)
	closeIndent := strings.Repeat("   ", depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%s%s,\n", indent, encodeValue(item, depth+1))
	}
	fmt.Fprintf(&b, "%s}", closeIndent)
	return b.String()
}

func encodeTable(t *Table, depth int) string {
	keys := t.Keys()
	if len(keys) == 0 {
		return "{}"
	}
	// Numeric-only keys (1, 2, 3, ...) are array-shaped: render as array
	// form for round-trip fidelity with parseTable's implicit indices.
	if isSequential(keys) {
		items := make([]Value, len(keys))
		for i, k := range keys {
			items[i], _ = t.Get(k)
		}
		return encodeArray(items, depth)
	}

	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	indent := strings.Repeat("   ", depth+1)
	closeIndent := strings.Repeat("   ", depth)
	var b strings.Builder
	b.WriteString("{\n")
	for _, k := range sorted {
		v, _ := t.Get(k)
		fmt.Fprintf(&b, "%s%s = %s,\n", indent, k, encodeValue(v, depth+1))
	}
	fmt.Fprintf(&b, "%s}", closeIndent)
	return b.String()
}

func isSequential(keys []string) bool {
	for i, k := range keys {
		n, err := strconv.Atoi(k)
		if err != nil || n != i+1 {
			return false
		}
	}
	return len(keys) > 0
}

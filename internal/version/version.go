// Package version implements the version and constraint algebra LuaDist2
// uses to select package releases: parsing, total ordering, and the
// LuaRocks constraint operators (==, ~=, <, <=, >, >=, ~>).
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a parsed LuaRocks version string of the form
// MAJOR[.MINOR[.PATCH[.…]]][-REV], with an optional packer-applied _HEX
// hash suffix. Equality and ordering are defined on the parsed components,
// never on the original string.
type Version struct {
	components []int64
	revision   int64
	hasRev     bool
	hash       string
	original   string
}

// Parse parses a LuaRocks version string. Parsing is total for
// well-formed strings and fails with an error for malformed ones.
func Parse(s string) (Version, error) {
	orig := s

	v := Version{original: orig}

	// Strip an optional packer hash suffix: "_<hex>" at the very end.
	if i := strings.LastIndexByte(s, '_'); i >= 0 && isHex(s[i+1:]) && i+1 < len(s) {
		v.hash = s[i+1:]
		s = s[:i]
	}

	// Split off an optional "-REV" suffix.
	if i := strings.LastIndexByte(s, '-'); i >= 0 {
		rev, err := strconv.ParseInt(s[i+1:], 10, 64)
		if err == nil {
			v.revision = rev
			v.hasRev = true
			s = s[:i]
		}
	}

	if s == "" {
		return Version{}, fmt.Errorf("version: empty version string in %q", orig)
	}

	parts := strings.Split(s, ".")
	comps := make([]int64, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("version: invalid component %q in %q: %w", p, orig, err)
		}
		comps[i] = n
	}
	v.components = comps

	return v, nil
}

// MustParse is Parse, panicking on error. Intended for constants and tests.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the original string this Version was parsed from.
func (v Version) String() string {
	return v.original
}

// Hash returns the packer-applied dep-hash suffix, if any.
func (v Version) Hash() string {
	return v.hash
}

// WithHash returns a copy of v with its display string and hash suffix
// set to hash, as the packer does when exporting a redistributable
// package (spec.md §4.8).
func (v Version) WithHash(hash string) Version {
	base := v.original
	if v.hash != "" {
		base = strings.TrimSuffix(base, "_"+v.hash)
	}
	v.hash = hash
	v.original = base + "_" + hash
	return v
}

// WithoutHash returns a copy of v with any packer dep-hash suffix
// removed from both the hash field and the display string (spec.md
// §4.7 step 2: "strip any dep-hash suffix from version.string" when the
// binary short-circuit installs an already-packed rockspec).
func (v Version) WithoutHash() Version {
	if v.hash == "" {
		return v
	}
	v.original = strings.TrimSuffix(v.original, "_"+v.hash)
	v.hash = ""
	return v
}

// component returns the i-th numeric component, treating any position
// past the parsed length as 0.
func (v Version) component(i int) int64 {
	if i < len(v.components) {
		return v.components[i]
	}
	return 0
}

func maxLen(a, b Version) int {
	if len(a.components) > len(b.components) {
		return len(a.components)
	}
	return len(b.components)
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater
// than o. Comparison is lexicographic over numeric components (missing
// trailing components are treated as 0), then by revision.
func (v Version) Compare(o Version) int {
	for i := 0; i < maxLen(v, o); i++ {
		a, b := v.component(i), o.component(i)
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
	}
	if v.revision < o.revision {
		return -1
	}
	if v.revision > o.revision {
		return 1
	}
	return 0
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Equal reports whether v and o have identical parsed components and
// revision (the hash suffix and original string are not considered).
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// CanonicalKey returns the manifest-map key for this version: components
// padded to at least three entries with 0, joined with ".", followed by
// "-REV". This collapses "1.0" and "1.0.0" to the same key ("1.0.0-0"),
// resolving spec.md's Open Question about manifest version-key
// normalization (see DESIGN.md), while still keying distinct revisions of
// the same base version ("1.8.0-1" vs "1.8.0-2") to distinct entries: the
// revision is part of the total order (spec.md §4.1, "Revision (-N) is
// compared last") and must survive the round trip through the manifest
// map, or a constraint pinning a specific revision could never match.
func (v Version) CanonicalKey() string {
	n := len(v.components)
	if n < 3 {
		n = 3
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = strconv.FormatInt(v.component(i), 10)
	}
	return strings.Join(parts, ".") + "-" + strconv.FormatInt(v.revision, 10)
}

// Revision returns the -REV suffix, or 0 if none was present.
func (v Version) Revision() int64 { return v.revision }

// IncrementLast returns a copy of v with its last non-zero component
// incremented by one and every following component zeroed, used to build
// the upper bound of a "~>" pessimistic constraint.
func (v Version) IncrementLast() Version {
	comps := append([]int64(nil), v.components...)
	last := len(comps) - 1
	for last > 0 && comps[last] == 0 {
		last--
	}
	comps[last]++
	for i := last + 1; i < len(comps); i++ {
		comps[i] = 0
	}
	out := Version{components: comps}
	out.original = joinComponents(comps)
	return out
}

func joinComponents(comps []int64) string {
	parts := make([]string, len(comps))
	for i, c := range comps {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, ".")
}

func isHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

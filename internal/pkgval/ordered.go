package pkgval

// OrderedSet is an insertion-ordered collection of Packages keyed by
// name, with O(1) average lookup and order-preserving removal (spec.md
// §4.3). Downstream stages (downloader, installer, static bundler) rely
// on the deterministic order this type preserves.
type OrderedSet struct {
	order []string
	byName map[string]Package
}

// NewOrderedSet returns an empty OrderedSet.
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{byName: make(map[string]Package)}
}

// Clone returns a deep-enough copy: same Packages, independent ordering
// slice and index, suitable for the resolver's "W = deepcopy(installed)"
// working set (spec.md §4.5).
func (s *OrderedSet) Clone() *OrderedSet {
	out := NewOrderedSet()
	for _, name := range s.order {
		out.Put(s.byName[name])
	}
	return out
}

// Put inserts or replaces the Package under its Name, preserving the
// original position on replace and appending on first insert.
func (s *OrderedSet) Put(p Package) {
	if _, ok := s.byName[p.Name]; !ok {
		s.order = append(s.order, p.Name)
	}
	s.byName[p.Name] = p
}

// Get looks up a Package by name.
func (s *OrderedSet) Get(name string) (Package, bool) {
	p, ok := s.byName[name]
	return p, ok
}

// Remove deletes the named Package, preserving the order of everything
// else.
func (s *OrderedSet) Remove(name string) {
	if _, ok := s.byName[name]; !ok {
		return
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of packages held.
func (s *OrderedSet) Len() int { return len(s.order) }

// Ordered returns the Packages in insertion order. The returned slice
// must not be mutated by the caller.
func (s *OrderedSet) Ordered() []Package {
	out := make([]Package, len(s.order))
	for i, n := range s.order {
		out[i] = s.byName[n]
	}
	return out
}

// Find returns the installed Package matching ref, if any.
func (s *OrderedSet) Find(ref PackageRef) (Package, bool) {
	p, ok := s.byName[ref.Name]
	if !ok || !p.Matches(ref) {
		return Package{}, false
	}
	return p, true
}

// Package installedset implements the InstalledSet: the ordered,
// persisted record of every Package currently installed under a deploy
// root (spec.md §3). It is the one piece of state every top-level
// operation reads and appends to.
package installedset

import (
	"os"

	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

// InstalledSet is the ordered container spec.md §3 describes: "ordered
// list of Packages with files populated... Ordering reflects install
// order and must be preserved across load/save round-trips." Built on
// the same pkgval.OrderedSet used for resolver output and install plans
// (spec.md §9's "single ordered-map abstraction" note).
type InstalledSet struct {
	set *pkgval.OrderedSet
}

// New returns an empty InstalledSet.
func New() *InstalledSet {
	return &InstalledSet{set: pkgval.NewOrderedSet()}
}

// Append records pkg as newly installed, at the end of install order.
// Appending a name that already exists replaces its entry in place,
// preserving that entry's original position (spec.md's install
// idempotence property: a second install(X) changes nothing).
func (s *InstalledSet) Append(pkg pkgval.Package) {
	s.set.Put(pkg)
}

// Remove deletes name from the set.
func (s *InstalledSet) Remove(name string) {
	s.set.Remove(name)
}

// Get returns the installed Package named name, if present.
func (s *InstalledSet) Get(name string) (pkgval.Package, bool) {
	return s.set.Get(name)
}

// Ordered returns every installed Package in install order.
func (s *InstalledSet) Ordered() []pkgval.Package {
	return s.set.Ordered()
}

// Find returns the installed Package matching ref, if any.
func (s *InstalledSet) Find(ref pkgval.PackageRef) (pkgval.Package, bool) {
	return s.set.Find(ref)
}

// Clone returns a deep-enough copy safe for a caller to mutate
// independently (used by the resolver, which treats InstalledSet as its
// starting working set).
func (s *InstalledSet) Clone() *pkgval.OrderedSet {
	return s.set.Clone()
}

// FileOwners returns the names of every installed package other than
// except whose Files list contains path — the ref-count query
// internal/installer.RemovePackage needs to decide whether a file is
// safe to unlink (DESIGN.md Open Question 3).
func (s *InstalledSet) FileOwners(path, except string) []string {
	var owners []string
	for _, pkg := range s.set.Ordered() {
		if pkg.Name == except {
			continue
		}
		for _, f := range pkg.Files {
			if f == path {
				owners = append(owners, pkg.Name)
				break
			}
		}
	}
	return owners
}

// Load reads an InstalledSet from path, in the pretty-printed table
// format internal/rockspec encodes (spec.md §6: "<root>/<local-manifest-
// file>: InstalledSet, pretty-printed table"). A missing file yields an
// empty, freshly initialized set: a deploy root is allowed to not exist
// yet.
func Load(path string) (*InstalledSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.Wrapf(err, "installedset: reading %s", path)
	}

	t, err := rockspec.Parse(string(data))
	if err != nil {
		return nil, errors.Wrapf(err, "installedset: parsing %s", path)
	}

	s := New()
	rawList, ok := t.Get("packages")
	if !ok {
		return s, nil
	}
	items, ok := rawList.([]rockspec.Value)
	if !ok {
		return nil, errors.Errorf("installedset: %s: packages is not a list", path)
	}
	for i, item := range items {
		sub, ok := item.(*rockspec.Table)
		if !ok {
			return nil, errors.Errorf("installedset: %s: packages[%d] is not a table", path, i)
		}
		pkg, err := packageFromTable(sub)
		if err != nil {
			return nil, errors.Wrapf(err, "installedset: %s: packages[%d]", path, i)
		}
		s.Append(pkg)
	}
	return s, nil
}

// Save writes s to path in install order, pretty-printed (spec.md §3).
func (s *InstalledSet) Save(path string) error {
	t := rockspec.NewTable()
	items := make([]rockspec.Value, 0, len(s.Ordered()))
	for _, pkg := range s.Ordered() {
		items = append(items, packageToTable(pkg))
	}
	t.Set("packages", items)

	data := rockspec.Encode(t)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return errors.Wrapf(err, "installedset: writing %s", path)
	}
	return nil
}

func packageToTable(pkg pkgval.Package) *rockspec.Table {
	t := rockspec.NewTable()
	t.Set("name", pkg.Name)
	t.Set("version", pkg.Version.String())
	if len(pkg.Files) > 0 {
		files := make([]rockspec.Value, len(pkg.Files))
		for i, f := range pkg.Files {
			files[i] = f
		}
		t.Set("files", files)
	}
	if len(pkg.BinDependencies) > 0 {
		deps := make([]rockspec.Value, len(pkg.BinDependencies))
		for i, d := range pkg.BinDependencies {
			deps[i] = d.String()
		}
		t.Set("bin_dependencies", deps)
	}
	if pkg.BuiltOnPlatform != "" {
		t.Set("built_on_platform", pkg.BuiltOnPlatform)
	}
	if pkg.Spec != nil {
		t.Set("spec", pkg.Spec.ToTable())
	}
	return t
}

func packageFromTable(t *rockspec.Table) (pkgval.Package, error) {
	name, ok := t.GetString("name")
	if !ok {
		return pkgval.Package{}, errors.New("missing name")
	}
	verStr, ok := t.GetString("version")
	if !ok {
		return pkgval.Package{}, errors.New("missing version")
	}
	v, err := version.Parse(verStr)
	if err != nil {
		return pkgval.Package{}, errors.Wrapf(err, "version %q", verStr)
	}

	pkg := pkgval.Package{Name: name, Version: v}
	if files, ok := t.GetStringList("files"); ok {
		pkg.Files = files
	}
	if deps, ok := t.GetStringList("bin_dependencies"); ok {
		for _, d := range deps {
			ref, err := pkgval.ParseDependencyString(d)
			if err != nil {
				return pkgval.Package{}, errors.Wrapf(err, "bin_dependencies entry %q", d)
			}
			pkg.BinDependencies = append(pkg.BinDependencies, ref)
		}
	}
	if built, ok := t.GetString("built_on_platform"); ok {
		pkg.BuiltOnPlatform = built
	}
	if specTable, ok := t.GetTable("spec"); ok {
		spec, err := rockspec.FromTable(specTable)
		if err != nil {
			return pkgval.Package{}, errors.Wrap(err, "spec")
		}
		pkg.Spec = spec
	}
	return pkg, nil
}

// Package pkgval holds the Package and PackageRef value types plus the
// insertion-ordered container used everywhere a deterministic install
// order matters (resolver output, install plan, InstalledSet).
package pkgval

import (
	"fmt"
	"strings"

	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

// PackageRef names a package plus a constraint on its version, as given
// on the command line or in a rockspec's dependencies list.
type PackageRef struct {
	Name       string
	Constraint version.Constraint
}

func (r PackageRef) String() string {
	if len(r.Constraint.Clauses) == 0 {
		return r.Name
	}
	return r.Name + " " + r.Constraint.String()
}

// ParseDependencyString parses a rockspec dependency entry of the form
// "name OP version" or a bare "name" into a PackageRef, the way
// LuaRocks' own dependency strings read (grounded on
// internal/luarocks.parseDependency in the registries pack repo).
func ParseDependencyString(s string) (PackageRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackageRef{}, fmt.Errorf("pkgval: empty dependency string")
	}
	parts := strings.SplitN(s, " ", 2)
	name := parts[0]
	if len(parts) == 1 {
		return PackageRef{Name: name}, nil
	}
	c, err := version.ParseConstraints(parts[1])
	if err != nil {
		return PackageRef{}, fmt.Errorf("pkgval: dependency %q: %w", s, err)
	}
	return PackageRef{Name: name, Constraint: c}, nil
}

// Package is an installed or to-be-installed rock: identity plus the
// state attached during resolution and install (spec.md §3).
type Package struct {
	Name    string
	Version version.Version

	Spec *rockspec.Rockspec

	// Files are paths relative to the deploy root, populated by the
	// installer or the binary short-circuit.
	Files []string

	// BinDependencies names packages this one links against at runtime;
	// every entry must be present in the InstalledSet at persistence time
	// (spec.md §3 invariant).
	BinDependencies []PackageRef

	BuiltOnPlatform string

	// IsProvisional marks a Package inserted only to drive a resolver
	// fallback attempt (spec.md §4.5). Provisional packages must never
	// appear in a final install list or be persisted.
	IsProvisional bool
}

// Equal reports whether two Packages share identity: name and parsed
// version (spec.md §4.2). Files, spec, and bin-deps are not considered.
func (p Package) Equal(o Package) bool {
	return p.Name == o.Name && p.Version.Equal(o.Version)
}

// Matches reports whether p satisfies ref: same name and every clause of
// ref's constraint holds against p's version.
func (p Package) Matches(ref PackageRef) bool {
	return p.Name == ref.Name && ref.Constraint.Matches(p.Version)
}

func (p Package) String() string {
	return fmt.Sprintf("%s %s", p.Name, p.Version)
}

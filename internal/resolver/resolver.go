// Package resolver implements the dependency resolver: a greedy,
// depth-first closure over one package's dependencies at a time, plus the
// Lua-interpreter fallback strategy the orchestrator invokes on failure
// (spec.md §4.5).
package resolver

import (
	"sort"

	"github.com/luadist2/luadist2/internal/manifest"
	"github.com/luadist2/luadist2/internal/pkgval"
	"github.com/luadist2/luadist2/internal/version"
)

// Resolve produces an ordered list of Packages to install to satisfy
// targets, given the already-installed set and the active platform tag
// set, or an error. The returned list excludes packages already present
// in installed and excludes any provisional seed (spec.md §4.5).
func Resolve(targets []pkgval.PackageRef, installed *pkgval.OrderedSet, platform []string, m *manifest.Manifest) ([]pkgval.Package, error) {
	w := installed.Clone()
	var out []pkgval.Package

	for _, target := range targets {
		added, err := resolveTarget(target, w, platform, m)
		if err != nil {
			return nil, &TargetError{Target: target.String(), Err: err}
		}
		for _, p := range added {
			w.Put(p)
			out = append(out, p)
		}
	}

	return out, nil
}

// resolveTarget runs the single-target resolver: a DFS closure that
// returns, in dependency-first order, every package that must be added to
// w to satisfy ref.
func resolveTarget(ref pkgval.PackageRef, w *pkgval.OrderedSet, platform []string, m *manifest.Manifest) ([]pkgval.Package, error) {
	visiting := make(map[string]bool)
	var order []pkgval.Package

	var visit func(ref pkgval.PackageRef) error
	visit = func(ref pkgval.PackageRef) error {
		if existing, ok := w.Get(ref.Name); ok {
			if !ref.Constraint.Matches(existing.Version) {
				return &ConflictError{Name: ref.Name, Have: existing.Version.String(), Required: ref.Constraint.String()}
			}
			return nil
		}
		if visiting[ref.Name] {
			// Already being resolved earlier in this DFS branch; treat
			// as satisfied for cycle safety (the greedy resolver has no
			// backtracking, so a true version conflict inside a cycle
			// will still be caught when that package is finalized).
			return nil
		}
		visiting[ref.Name] = true
		defer delete(visiting, ref.Name)

		chosen, info, err := selectVersion(ref, platform, m)
		if err != nil {
			return err
		}

		for _, depStr := range info.Dependencies {
			depRef, err := pkgval.ParseDependencyString(depStr)
			if err != nil {
				return err
			}
			if err := visit(depRef); err != nil {
				return err
			}
		}

		pkg := pkgval.Package{Name: ref.Name, Version: chosen}
		w.Put(pkg)
		order = append(order, pkg)
		return nil
	}

	if err := visit(ref); err != nil {
		return nil, err
	}
	return order, nil
}

// selectVersion picks the greatest version of ref.Name satisfying
// ref.Constraint, filtered by platform, breaking ties by greater
// revision (spec.md §4.5).
func selectVersion(ref pkgval.PackageRef, platform []string, m *manifest.Manifest) (version.Version, manifest.PackageInfo, error) {
	candidates := m.Versions(ref.Name)

	var best *version.Version
	var bestInfo manifest.PackageInfo

	sort.Slice(candidates, func(i, j int) bool { return candidates[j].Less(candidates[i]) })

	for i := range candidates {
		v := candidates[i]
		if !ref.Constraint.Matches(v) {
			continue
		}
		info, ok := m.Info(ref.Name, v)
		if !ok {
			continue
		}
		if !platformAllowed(info.SupportedPlatforms, platform) {
			continue
		}
		if best == nil || v.Compare(*best) > 0 ||
			(v.Compare(*best) == 0 && v.Revision() > best.Revision()) {
			vv := v
			best = &vv
			bestInfo = info
		}
	}

	if best == nil {
		return version.Version{}, manifest.PackageInfo{}, &NoVersionError{Name: ref.Name, Constraint: ref.Constraint.String()}
	}
	return *best, bestInfo, nil
}

// platformAllowed implements spec.md §4.5's platform filter: "any
// rockspec with supported_platforms is skipped if no listed platform
// matches the active platform tag set." An empty list means unrestricted.
func platformAllowed(supported, active []string) bool {
	if len(supported) == 0 {
		return true
	}
	for _, s := range supported {
		for _, a := range active {
			if s == a {
				return true
			}
		}
	}
	return false
}

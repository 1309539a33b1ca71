package resolver

import (
	"sort"

	"github.com/luadist2/luadist2/internal/manifest"
	"github.com/luadist2/luadist2/internal/pkgval"
)

const luaPackageName = "lua"

// ResolveWithFallback implements spec.md §4.5's Lua-interpreter fallback
// strategy as a function separate from Resolve itself: on a failed
// Resolve, it retries once per "lua" version
// available in the manifest, newest first, seeding each attempt with a
// provisional lua Package. The fallback never runs if installed already
// has a lua package — the user is assumed to manage it.
func ResolveWithFallback(targets []pkgval.PackageRef, installed *pkgval.OrderedSet, platform []string, m *manifest.Manifest) ([]pkgval.Package, error) {
	result, firstErr := Resolve(targets, installed, platform, m)
	if firstErr == nil {
		return result, nil
	}

	if _, hasLua := installed.Get(luaPackageName); hasLua {
		return nil, firstErr
	}

	candidates := m.Versions(luaPackageName)
	sort.Slice(candidates, func(i, j int) bool { return candidates[j].Less(candidates[i]) })

	for _, v := range candidates {
		seeded := installed.Clone()
		seeded.Put(pkgval.Package{Name: luaPackageName, Version: v, IsProvisional: true})

		attempt, err := Resolve(targets, seeded, platform, m)
		if err != nil {
			continue
		}

		lua := pkgval.Package{Name: luaPackageName, Version: v, IsProvisional: false}
		return append([]pkgval.Package{lua}, attempt...), nil
	}

	return nil, firstErr
}

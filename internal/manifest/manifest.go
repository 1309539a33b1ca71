// Package manifest implements the manifest layer: loading one or more
// upstream package indices (local directories of rockspecs, or remote git
// repositories carrying a manifest file) and merging them into a single
// coherent view with first-wins precedence (spec.md §4.4).
package manifest

import (
	"strings"

	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

// PackageInfo is the per-version entry of a Manifest's packages map
// (spec.md §3).
type PackageInfo struct {
	Dependencies       []string
	SupportedPlatforms []string

	// LocalURL is set when this entry was synthesized from a local-repo
	// scan (spec.md §4.4): the containing directory of its rockspec.
	LocalURL string
}

// Manifest is the merged view of one or more upstream package indices
// (spec.md §3): RepoPath accumulates one entry per contributing source,
// Packages maps name -> canonical-version-key -> PackageInfo.
type Manifest struct {
	RepoPath []string
	Packages map[string]map[string]PackageInfo
}

func newManifest() *Manifest {
	return &Manifest{Packages: make(map[string]map[string]PackageInfo)}
}

// put inserts (name, versionKey) -> info only if absent, implementing the
// merge-precedence rule (spec.md §4.4: "A present (name, version) entry
// is never overwritten by a later URL").
func (m *Manifest) put(name, versionKey string, info PackageInfo) {
	versions, ok := m.Packages[name]
	if !ok {
		versions = make(map[string]PackageInfo)
		m.Packages[name] = versions
	}
	if _, exists := versions[versionKey]; exists {
		return
	}
	versions[versionKey] = info
}

// Versions returns every parsed Version available for name, across all
// entries, in no particular order; callers sort as needed. Each Version
// is parsed from its canonical key with a "-0" revision suffix dropped,
// so a key "5.2.4-0" yields a Version whose String() is "5.2.4"; a source
// spelling with fewer than three components ("1.0") comes back padded.
func (m *Manifest) Versions(name string) []version.Version {
	versions, ok := m.Packages[name]
	if !ok {
		return nil
	}
	out := make([]version.Version, 0, len(versions))
	for key := range versions {
		v, err := version.Parse(strings.TrimSuffix(key, "-0"))
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Info returns the PackageInfo for name at exactly v's canonical key.
func (m *Manifest) Info(name string, v version.Version) (PackageInfo, bool) {
	versions, ok := m.Packages[name]
	if !ok {
		return PackageInfo{}, false
	}
	info, ok := versions[v.CanonicalKey()]
	return info, ok
}

// rockspecToInfo projects a loaded Rockspec into the PackageInfo shape a
// manifest entry carries.
func rockspecToInfo(rs *rockspec.Rockspec, localURL string) PackageInfo {
	return PackageInfo{
		Dependencies:       rs.Dependencies,
		SupportedPlatforms: rs.SupportedPlatforms,
		LocalURL:           localURL,
	}
}

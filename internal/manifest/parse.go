package manifest

import (
	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

// parseManifestTable projects a raw manifest Table (already parsed by
// the restricted evaluator, spec.md §4.4) into a Manifest. The expected
// shape is:
//
//	packages = {
//	   xml = {
//	      ["1.8.0-1"] = { dependencies = {"lua >= 5.1"}, supported_platforms = {...} },
//	   },
//	}
func parseManifestTable(t *rockspec.Table) (*Manifest, error) {
	m := newManifest()

	pkgs, ok := t.GetTable("packages")
	if !ok {
		return m, nil
	}
	for _, name := range pkgs.Keys() {
		raw, _ := pkgs.Get(name)
		versions, ok := raw.(*rockspec.Table)
		if !ok {
			return nil, errors.Errorf("manifest: packages[%q] is not a table", name)
		}
		for _, vkey := range versions.Keys() {
			rawInfo, _ := versions.Get(vkey)
			infoTable, ok := rawInfo.(*rockspec.Table)
			if !ok {
				return nil, errors.Errorf("manifest: packages[%q][%q] is not a table", name, vkey)
			}
			// Re-key through CanonicalKey rather than trusting vkey's raw
			// spelling literally: a hand-written manifest may key a
			// revision-less entry "1.8.0" instead of "1.8.0-0", and must
			// still land on the same normalized key Info/Versions look
			// up (spec.md §4.1's revision-aware total order).
			parsed, err := version.Parse(vkey)
			if err != nil {
				continue
			}
			deps, _ := infoTable.GetStringList("dependencies")
			plats, _ := infoTable.GetStringList("supported_platforms")
			localURL, _ := infoTable.GetString("local_url")
			m.put(name, parsed.CanonicalKey(), PackageInfo{
				Dependencies:       deps,
				SupportedPlatforms: plats,
				LocalURL:           localURL,
			})
		}
	}
	return m, nil
}

// encodeManifestTable is parseManifestTable's inverse, used when debug
// mode writes a copy of the merged manifest to disk (spec.md §6).
func encodeManifestTable(m *Manifest) *rockspec.Table {
	root := rockspec.NewTable()
	pkgs := rockspec.NewTable()
	for name, versions := range m.Packages {
		vt := rockspec.NewTable()
		for vkey, info := range versions {
			it := rockspec.NewTable()
			if len(info.Dependencies) > 0 {
				it.Set("dependencies", toValueList(info.Dependencies))
			}
			if len(info.SupportedPlatforms) > 0 {
				it.Set("supported_platforms", toValueList(info.SupportedPlatforms))
			}
			if info.LocalURL != "" {
				it.Set("local_url", info.LocalURL)
			}
			vt.Set(vkey, it)
		}
		pkgs.Set(name, vt)
	}
	root.Set("packages", pkgs)
	return root
}

func toValueList(ss []string) []rockspec.Value {
	out := make([]rockspec.Value, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

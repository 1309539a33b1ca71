package manifest

import (
	"path/filepath"

	"github.com/karrick/godirwalk"
	"github.com/pkg/errors"

	"github.com/luadist2/luadist2/internal/rockspec"
	"github.com/luadist2/luadist2/internal/version"
)

// loadLocalRepo synthesizes a Manifest from a directory of package
// subdirectories, each potentially containing one or more .rockspec
// files, the way spec.md §4.4 describes for the non-remote-scheme
// branch: "scan each first-level subdirectory for .rockspec files, and
// synthesize a manifest whose packages map is populated from those
// rockspecs; each entry carries local_url = the containing directory."
//
// Directory walking uses godirwalk for its scandir-based traversal,
// substantially faster than filepath.Walk/os.ReadDir for wide directory
// trees (the same reason the teacher vendors it, even though the
// teacher's own code never calls it — see DESIGN.md).
func loadLocalRepo(root string) (*Manifest, error) {
	m := newManifest()

	entries, err := godirwalk.ReadDirents(root, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "manifest: scanning local repo %s", root)
	}

	for _, ent := range entries {
		if !ent.IsDir() {
			continue
		}
		dir := filepath.Join(root, ent.Name())
		rockspecs, err := filepath.Glob(filepath.Join(dir, "*.rockspec"))
		if err != nil {
			return nil, errors.Wrapf(err, "manifest: globbing %s", dir)
		}
		for _, rsPath := range rockspecs {
			rs, err := rockspec.Load(rsPath)
			if err != nil {
				return nil, errors.Wrapf(err, "manifest: loading %s", rsPath)
			}
			key := canonicalKeyOf(rs.Version)
			if key == "" {
				continue
			}
			m.put(rs.Package, key, rockspecToInfo(rs, dir))
		}
	}
	return m, nil
}

// canonicalKeyOf returns the manifest canonical key for a version
// string, or "" if the string does not parse (a malformed rockspec
// version is skipped rather than failing the whole local-repo scan,
// since one bad rockspec in a wide directory shouldn't sink everything
// else in it).
func canonicalKeyOf(s string) string {
	v, err := version.Parse(s)
	if err != nil {
		return ""
	}
	return v.CanonicalKey()
}
